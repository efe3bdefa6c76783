// Package categories holds the shared, authenticated list of blog
// categories.
package categories

import (
	"context"
	"fmt"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/eringen/adminpanel/api"
	"github.com/eringen/adminpanel/model"
)

// Service is the set of category endpoints the store calls.
// *api.CategoryService implements it.
type Service interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, name string) (model.Category, error)
	Update(ctx context.Context, id, name string) (model.Category, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) error
}

// Store caches the category list in memory. The list changes only after
// the backend confirms an operation; a failure records its message in Err
// and leaves the list as it was.
type Store struct {
	svc Service
	log *log.Logger

	mu         sync.RWMutex
	categories []model.Category
	loading    int
	err        string
}

// NewStore creates an empty store backed by svc.
func NewStore(svc Service) *Store {
	return &Store{svc: svc, log: log.New("categories")}
}

// Categories returns a copy of the current list.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.categories...)
}

// Loading reports whether any operation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Err returns the message of the last failed operation, or "".
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Name returns the name of category id, or "" when unknown.
func (s *Store) Name(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

// finish ends an operation. On success apply mutates the list under the
// lock; on failure the error message is recorded instead.
func (s *Store) finish(op string, err error, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	if err != nil {
		s.err = api.Message(err)
		s.log.Errorf("%s failed: %v", op, err)
		return fmt.Errorf("categories: %s: %w", op, err)
	}
	s.err = ""
	apply()
	return nil
}

// List replaces the list with the backend's.
func (s *Store) List(ctx context.Context) error {
	s.begin()
	list, err := s.svc.List(ctx)
	return s.finish("list", err, func() {
		s.categories = list
	})
}

// Create adds a category named name.
func (s *Store) Create(ctx context.Context, name string) (model.Category, error) {
	s.begin()
	c, err := s.svc.Create(ctx, name)
	if err == nil && c.Name == "" {
		c.Name = name
	}
	return c, s.finish("create", err, func() {
		s.categories = append(s.categories, c)
	})
}

// Update renames category id.
func (s *Store) Update(ctx context.Context, id, name string) (model.Category, error) {
	s.begin()
	c, err := s.svc.Update(ctx, id, name)
	if err == nil {
		if c.ID == "" {
			c.ID = id
		}
		if c.Name == "" {
			c.Name = name
		}
	}
	return c, s.finish("update", err, func() {
		for i := range s.categories {
			if s.categories[i].ID == id {
				s.categories[i] = c
				return
			}
		}
	})
}

// Delete removes category id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.begin()
	err := s.svc.Delete(ctx, id)
	return s.finish("delete", err, func() {
		s.removeLocked(map[string]bool{id: true})
	})
}

// BulkDelete removes every category in ids with one request.
func (s *Store) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	s.begin()
	err := s.svc.BulkDelete(ctx, ids)
	return s.finish("bulk delete", err, func() {
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		s.removeLocked(set)
	})
}

func (s *Store) removeLocked(ids map[string]bool) {
	kept := s.categories[:0:0]
	for _, c := range s.categories {
		if !ids[c.ID] {
			kept = append(kept, c)
		}
	}
	s.categories = kept
}
