package model

import "github.com/google/uuid"

// ListItem is a single entry of a list.
type ListItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// NewID returns a fresh random identifier for lists and items.
func NewID() string {
	return uuid.NewString()
}

// NewItems builds pending items from texts, in order. newID may be nil.
func NewItems(texts []string, newID func() string) []ListItem {
	if newID == nil {
		newID = NewID
	}
	out := make([]ListItem, 0, len(texts))
	for _, t := range texts {
		out = append(out, ListItem{ID: newID(), Text: t})
	}
	return out
}
