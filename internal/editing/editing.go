// Package editing implements inline editing of a single list item.
//
// A Session is the Editing half of the Viewing/Editing cycle: Begin enters
// it, Commit or Cancel leave it. Commit never reorders the list or touches
// anything other than the edited item's text.
package editing

import (
	"errors"
	"strings"

	"github.com/Makepad-fr/verbalist/internal/model"
)

// NewItemText is the placeholder text of a freshly added item.
const NewItemText = "New item"

// ErrCompleted is returned when editing a completed item.
var ErrCompleted = errors.New("completed items cannot be edited")

// CommitResult says what a commit did to the list.
type CommitResult int

const (
	// Unchanged means the session was not editing or the item is gone.
	Unchanged CommitResult = iota
	ItemUpdated
	ItemDeleted
)

func (r CommitResult) String() string {
	switch r {
	case ItemUpdated:
		return "updated"
	case ItemDeleted:
		return "deleted"
	}
	return "unchanged"
}

type Session struct {
	itemID   string
	original string
	draft    string
	selected bool
	editing  bool
}

// Begin starts editing item with its current text as the draft. The
// placeholder text starts out selected so the first keystroke replaces it.
func Begin(item model.ListItem) (*Session, error) {
	if item.Completed {
		return nil, ErrCompleted
	}
	return &Session{
		itemID:   item.ID,
		original: item.Text,
		draft:    item.Text,
		selected: item.Text == NewItemText,
		editing:  true,
	}, nil
}

// ShouldAutoEdit reports whether item opens in edit mode as soon as it is
// shown.
func ShouldAutoEdit(item model.ListItem) bool {
	return !item.Completed && item.Text == NewItemText
}

func (s *Session) ItemID() string   { return s.itemID }
func (s *Session) Draft() string    { return s.draft }
func (s *Session) Editing() bool    { return s.editing }
func (s *Session) Selected() bool   { return s.selected }
func (s *Session) Original() string { return s.original }

// SetDraft replaces the draft and clears the selection.
func (s *Session) SetDraft(text string) {
	s.draft = text
	s.selected = false
}

// Type inserts text at the end of the draft, replacing it when selected.
func (s *Session) Type(text string) {
	if s.selected {
		s.draft = ""
		s.selected = false
	}
	s.draft += text
}

// Commit applies the draft to list. A blank draft removes the item.
func (s *Session) Commit(list model.ToDoList) (model.ToDoList, CommitResult) {
	if !s.editing {
		return list, Unchanged
	}
	s.editing = false
	i := list.ItemIndex(s.itemID)
	if i < 0 {
		return list, Unchanged
	}
	text := strings.TrimSpace(s.draft)
	if text == "" {
		return list.WithoutItem(s.itemID), ItemDeleted
	}
	item := list.Items[i]
	item.Text = text
	return list.WithItem(item), ItemUpdated
}

// Cancel drops the draft. The stored item keeps its text.
func (s *Session) Cancel() {
	s.draft = s.original
	s.selected = false
	s.editing = false
}

// Toggle flips the completed flag of the item with id.
func Toggle(list model.ToDoList, id string) (model.ToDoList, bool) {
	i := list.ItemIndex(id)
	if i < 0 {
		return list, false
	}
	item := list.Items[i]
	item.Completed = !item.Completed
	return list.WithItem(item), true
}

// AddItem appends a placeholder item and returns it.
func AddItem(list model.ToDoList, newID func() string) (model.ToDoList, model.ListItem) {
	if newID == nil {
		newID = model.NewID
	}
	item := model.ListItem{ID: newID(), Text: NewItemText}
	return list.WithAppendedItem(item), item
}

// DeleteItem removes the item with id.
func DeleteItem(list model.ToDoList, id string) (model.ToDoList, bool) {
	if list.ItemIndex(id) < 0 {
		return list, false
	}
	return list.WithoutItem(id), true
}
