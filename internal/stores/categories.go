package stores

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"timewallet/internal/api"
)

// UnknownCategoryName is the degraded display for a dangling category
// reference. Deleting a category never cascades to the tasks pointing at
// it; they fall back to this.
const UnknownCategoryName = "Unknown Category"

// UnknownCategoryColor is the neutral accent used with the fallback.
const UnknownCategoryColor = "#666666"

// CategoryAPI is the slice of the request client the categories store
// uses.
type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]api.Category, error)
	CreateCategory(ctx context.Context, draft api.CategoryDraft) (*api.Category, error)
	UpdateCategory(ctx context.Context, id string, draft api.CategoryDraft) (*api.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// CategoriesStore caches the user's category list.
type CategoriesStore struct {
	mu  sync.Mutex
	api CategoryAPI
	log *slog.Logger

	categories  []api.Category
	loading     bool
	err         string
	lastFetched time.Time
}

func NewCategoriesStore(a CategoryAPI, log *slog.Logger) *CategoriesStore {
	return &CategoriesStore{api: a, log: log}
}

// Fetch loads the full category list. The operation has no parameters,
// so a call while one is in flight is always a duplicate and is dropped.
func (s *CategoriesStore) Fetch(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	categories, err := s.api.ListCategories(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.log.Error("fetch categories", "error", err)
		s.err = "Failed to load categories"
		return err
	}
	s.categories = categories
	s.lastFetched = time.Now()
	return nil
}

func (s *CategoriesStore) Create(ctx context.Context, draft api.CategoryDraft) error {
	if err := validateCategoryDraft(draft); err != nil {
		return err
	}
	created, err := s.api.CreateCategory(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Error("create category", "error", err)
		s.err = "Failed to create category"
		return err
	}
	s.categories = append(s.categories, *created)
	s.err = ""
	return nil
}

func (s *CategoriesStore) Update(ctx context.Context, id string, draft api.CategoryDraft) error {
	if err := validateCategoryDraft(draft); err != nil {
		return err
	}
	updated, err := s.api.UpdateCategory(ctx, id, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Error("update category", "id", id, "error", err)
		s.err = "Failed to update category"
		return err
	}
	for i := range s.categories {
		if s.categories[i].ID == updated.ID {
			s.categories[i] = *updated
			break
		}
	}
	s.err = ""
	return nil
}

func (s *CategoriesStore) Delete(ctx context.Context, id string) error {
	err := s.api.DeleteCategory(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Error("delete category", "id", id, "error", err)
		s.err = "Failed to delete category"
		return err
	}
	kept := s.categories[:0]
	for _, c := range s.categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.categories = kept
	s.err = ""
	return nil
}

// Lookup resolves a category reference for display. Dangling references
// degrade to the unknown-category fallback instead of failing.
func (s *CategoriesStore) Lookup(id string) api.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c
		}
	}
	return api.Category{ID: id, Name: UnknownCategoryName, Color: UnknownCategoryColor}
}

// Categories returns a copy of the cached list.
func (s *CategoriesStore) Categories() []api.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *CategoriesStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *CategoriesStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *CategoriesStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

func (s *CategoriesStore) LastFetched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFetched
}
