package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ToDoList is a titled, ordered collection of items.
// Item order is display order; helpers below return copies and never
// reorder the remaining items.
type ToDoList struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Items     []ListItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Clone returns a deep copy.
func (l ToDoList) Clone() ToDoList {
	l.Items = slices.Clone(l.Items)
	if l.Items == nil {
		l.Items = []ListItem{}
	}
	return l
}

// ItemIndex returns the position of the item with id, or -1.
func (l ToDoList) ItemIndex(id string) int {
	return slices.IndexFunc(l.Items, func(it ListItem) bool { return it.ID == id })
}

// WithItem replaces the item carrying the same id. Unknown ids leave the
// list unchanged.
func (l ToDoList) WithItem(item ListItem) ToDoList {
	out := l.Clone()
	if i := out.ItemIndex(item.ID); i >= 0 {
		out.Items[i] = item
	}
	return out
}

// WithoutItem removes the item with id in place.
func (l ToDoList) WithoutItem(id string) ToDoList {
	out := l.Clone()
	out.Items = slices.DeleteFunc(out.Items, func(it ListItem) bool { return it.ID == id })
	return out
}

// WithAppendedItem adds item at the end.
func (l ToDoList) WithAppendedItem(item ListItem) ToDoList {
	out := l.Clone()
	out.Items = append(out.Items, item)
	return out
}

// Stats counts completed and pending items.
func (l ToDoList) Stats() (done, pending int) {
	for _, it := range l.Items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// List invariant violations reported by Validate.
var (
	ErrBlankTitle      = errors.New("title cannot be blank")
	ErrBlankItemID     = errors.New("item id cannot be empty")
	ErrDuplicateItemID = errors.New("duplicate item id")
	ErrBlankItemText   = errors.New("item text cannot be blank")
)

// Validate checks that the title is not blank and that every item has a
// non-blank text and an id unique within the list.
func (l ToDoList) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return ErrBlankTitle
	}
	seen := make(map[string]struct{}, len(l.Items))
	for _, it := range l.Items {
		if it.ID == "" {
			return ErrBlankItemID
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateItemID, it.ID)
		}
		seen[it.ID] = struct{}{}
		if strings.TrimSpace(it.Text) == "" {
			return fmt.Errorf("%w: item %s", ErrBlankItemText, it.ID)
		}
	}
	return nil
}
