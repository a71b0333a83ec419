// Package repository holds the in-memory todo store. Every todo is kept once
// and indexed twice: by owning user and by the space it was created in.
package repository

import (
	"errors"
	"sync"

	"todo-bot/internal/models"
)

var (
	ErrNotFound    = errors.New("todo not found")
	ErrDuplicateID = errors.New("todo id already exists")
)

// Store is safe for concurrent use. Reads return copies, so callers can never
// mutate a stored todo except through Update.
type Store struct {
	mu      sync.RWMutex
	todos   map[string]*models.Todo
	byUser  map[string][]string
	bySpace map[string][]string
}

// New returns an empty store.
func New() *Store {
	return &Store{
		todos:   make(map[string]*models.Todo),
		byUser:  make(map[string][]string),
		bySpace: make(map[string][]string),
	}
}

// Create inserts a todo into both indices, creating the user and space buckets on demand.
func (s *Store) Create(todo models.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.todos[todo.ID]; ok {
		return ErrDuplicateID
	}
	t := todo
	s.todos[t.ID] = &t
	s.byUser[t.CreatedBy.ID] = append(s.byUser[t.CreatedBy.ID], t.ID)
	s.bySpace[t.SpaceID] = append(s.bySpace[t.SpaceID], t.ID)
	return nil
}

// Find returns the todo with the given id. A non-empty userID restricts the
// lookup to that user's todos; an empty one matches any owner.
func (s *Store) Find(todoID, userID string) (models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.lookup(todoID, userID)
	if !ok {
		return models.Todo{}, ErrNotFound
	}
	return *t, nil
}

// Update applies fn to a todo owned by userID and returns the result. Unlike
// Find there is no wildcard: an empty userID matches nothing. Changes fn makes
// to the id, owner, or space are discarded so both indices keep pointing at
// the right record.
func (s *Store) Update(todoID, userID string, fn func(*models.Todo)) (models.Todo, error) {
	if userID == "" {
		return models.Todo{}, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lookup(todoID, userID)
	if !ok {
		return models.Todo{}, ErrNotFound
	}
	id, owner, space := t.ID, t.CreatedBy.ID, t.SpaceID
	fn(t)
	t.ID, t.CreatedBy.ID, t.SpaceID = id, owner, space
	return *t, nil
}

// List returns the user's todos in creation order.
func (s *Store) List(userID string) []models.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byUser[userID])
}

// ListSpace returns the todos created in a space, in creation order.
func (s *Store) ListSpace(spaceID string) []models.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.bySpace[spaceID])
}

// Len reports the number of stored todos.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.todos)
}

func (s *Store) lookup(todoID, userID string) (*models.Todo, bool) {
	t, ok := s.todos[todoID]
	if !ok || (userID != "" && t.CreatedBy.ID != userID) {
		return nil, false
	}
	return t, true
}

func (s *Store) collect(ids []string) []models.Todo {
	out := make([]models.Todo, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.todos[id])
	}
	return out
}
