package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewallet/internal/api"
)

type fakeCategoryAPI struct {
	listFn   func() ([]api.Category, error)
	createFn func(draft api.CategoryDraft) (*api.Category, error)
	updateFn func(id string, draft api.CategoryDraft) (*api.Category, error)
	deleteFn func(id string) error

	createCalls int
}

func (f *fakeCategoryAPI) ListCategories(context.Context) ([]api.Category, error) {
	return f.listFn()
}

func (f *fakeCategoryAPI) CreateCategory(_ context.Context, draft api.CategoryDraft) (*api.Category, error) {
	f.createCalls++
	return f.createFn(draft)
}

func (f *fakeCategoryAPI) UpdateCategory(_ context.Context, id string, draft api.CategoryDraft) (*api.Category, error) {
	return f.updateFn(id, draft)
}

func (f *fakeCategoryAPI) DeleteCategory(_ context.Context, id string) error {
	return f.deleteFn(id)
}

func TestLookupDegradesDanglingReference(t *testing.T) {
	fake := &fakeCategoryAPI{
		listFn: func() ([]api.Category, error) {
			return []api.Category{{ID: "c1", Name: "Deep Work", Color: "#2D967C"}}, nil
		},
	}
	s := NewCategoriesStore(fake, testLogger())
	require.NoError(t, s.Fetch(context.Background()))

	known := s.Lookup("c1")
	assert.Equal(t, "Deep Work", known.Name)

	// A task can point at a deleted category forever; display degrades
	// instead of failing.
	unknown := s.Lookup("gone")
	assert.Equal(t, UnknownCategoryName, unknown.Name)
	assert.Equal(t, UnknownCategoryColor, unknown.Color)
	assert.Equal(t, "gone", unknown.ID)
}

func TestCategoryDeleteDoesNotCascade(t *testing.T) {
	fake := &fakeCategoryAPI{
		listFn: func() ([]api.Category, error) {
			return []api.Category{{ID: "c1", Name: "A"}, {ID: "c2", Name: "B"}}, nil
		},
		deleteFn: func(string) error { return nil },
	}
	s := NewCategoriesStore(fake, testLogger())
	require.NoError(t, s.Fetch(context.Background()))

	require.NoError(t, s.Delete(context.Background(), "c1"))
	require.Len(t, s.Categories(), 1)

	// After deletion, references to c1 resolve to the fallback.
	assert.Equal(t, UnknownCategoryName, s.Lookup("c1").Name)
}

func TestCategoryCreateValidatesFirst(t *testing.T) {
	fake := &fakeCategoryAPI{
		createFn: func(api.CategoryDraft) (*api.Category, error) {
			t.Fatal("network must not be reached for an invalid draft")
			return nil, nil
		},
	}
	s := NewCategoriesStore(fake, testLogger())

	err := s.Create(context.Background(), api.CategoryDraft{Name: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Fields[0].Field)
	assert.Zero(t, fake.createCalls)
}

func TestCategoryUpdateReplacesEntry(t *testing.T) {
	updated := api.Category{ID: "c1", Name: "Renamed", Color: "#7AA2F7"}
	fake := &fakeCategoryAPI{
		listFn:   func() ([]api.Category, error) { return []api.Category{{ID: "c1", Name: "Old"}}, nil },
		updateFn: func(string, api.CategoryDraft) (*api.Category, error) { return &updated, nil },
	}
	s := NewCategoriesStore(fake, testLogger())
	require.NoError(t, s.Fetch(context.Background()))

	require.NoError(t, s.Update(context.Background(), "c1", api.CategoryDraft{Name: "Renamed", Color: "#7AA2F7"}))
	assert.Equal(t, "Renamed", s.Lookup("c1").Name)
}
