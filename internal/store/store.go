// Package store holds the in-memory collection of lists.
//
// The store is the single authority for list state during a session. None of
// its operations fail; validation happens upstream.
package store

import (
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Makepad-fr/verbalist/internal/model"
)

// Store keeps lists most-recent-first.
type Store struct {
	mu    sync.RWMutex
	lists []model.ToDoList

	now   func() time.Time
	newID func() string
	log   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides list and item id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: model.NewID,
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create builds a list from the given title and item texts and puts it in
// front of all existing lists.
func (s *Store) Create(title string, items []string) model.ToDoList {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := model.ToDoList{
		ID:        s.newID(),
		Title:     title,
		Items:     model.NewItems(items, s.newID),
		CreatedAt: s.now().UTC(),
	}
	s.lists = slices.Insert(s.lists, 0, l)
	s.log.Debug("list created",
		zap.String("list_id", l.ID),
		zap.String("title", l.Title),
		zap.Int("items", len(l.Items)),
	)
	return l.Clone()
}

// Update replaces the stored list with the same id. It reports whether a
// list was replaced; an unknown id is a no-op. The creation time always
// stays the stored one.
func (s *Store) Update(list model.ToDoList) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(list.ID)
	if i < 0 {
		s.log.Warn("update of unknown list ignored", zap.String("list_id", list.ID))
		return false
	}
	list.CreatedAt = s.lists[i].CreatedAt
	s.lists[i] = list.Clone()
	return true
}

// Modify replaces the list with id by fn's result in one step, so no other
// mutation can land between the read and the write. fn must not call back
// into the store. The id and creation time are kept.
func (s *Store) Modify(id string, fn func(model.ToDoList) model.ToDoList) (model.ToDoList, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.ToDoList{}, false
	}
	cur := s.lists[i]
	next := fn(cur.Clone())
	next.ID, next.CreatedAt = cur.ID, cur.CreatedAt
	s.lists[i] = next.Clone()
	return next.Clone(), true
}

// Delete removes the list with id. It reports whether a list was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false
	}
	s.lists = slices.Delete(s.lists, i, i+1)
	s.log.Debug("list deleted", zap.String("list_id", id))
	return true
}

// Get returns a copy of the list with id.
func (s *Store) Get(id string) (model.ToDoList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return model.ToDoList{}, false
	}
	return s.lists[i].Clone(), true
}

// Lists returns copies of all lists, most recent first.
func (s *Store) Lists() []model.ToDoList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ToDoList, 0, len(s.lists))
	for _, l := range s.lists {
		out = append(out, l.Clone())
	}
	return out
}

// Len returns the number of lists.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lists)
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.lists, func(l model.ToDoList) bool { return l.ID == id })
}
