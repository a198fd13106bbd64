package storage

import (
	"sort"

	"github.com/voicetimeapp/voicetime/internal/model"

	apperrors "github.com/voicetimeapp/voicetime/internal/errors"
)

// CategoryRepo provides operations for Category entities.
type CategoryRepo struct {
	db *DB
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(db *DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create stores a new category. The id must be unique.
func (r *CategoryRepo) Create(category *model.Category) error {
	exists, err := r.db.Exists(model.GenerateCategoryKey(category.ID))
	if err != nil {
		return err
	}
	if exists {
		return apperrors.ErrCategoryExists
	}
	category.Key = model.GenerateCategoryKey(category.ID)
	return r.db.Set(category)
}

// Get retrieves a category by id.
func (r *CategoryRepo) Get(id string) (*model.Category, error) {
	category := &model.Category{}
	if err := r.db.Get(model.GenerateCategoryKey(id), category); err != nil {
		if IsErrKeyNotFound(err) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// Update updates an existing category.
func (r *CategoryRepo) Update(category *model.Category) error {
	return r.db.Set(category)
}

// Delete removes a category and clears the category reference on its entries.
// The entries themselves are kept.
func (r *CategoryRepo) Delete(id string, entries *EntryRepo) error {
	if _, err := r.Get(id); err != nil {
		return err
	}

	orphaned, err := entries.ListByCategory(id)
	if err != nil {
		return err
	}
	for _, e := range orphaned {
		e.CategoryID = nil
		if err := entries.Update(e); err != nil {
			return err
		}
	}

	return r.db.Delete(model.GenerateCategoryKey(id))
}

// List retrieves all categories sorted by name.
func (r *CategoryRepo) List() ([]*model.Category, error) {
	categories, err := GetAllByPrefix(r.db, model.PrefixCategory+":", func() *model.Category {
		return &model.Category{}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// SeedDefaults creates the default category set for categories that do not
// exist yet. Existing categories are left untouched.
func (r *CategoryRepo) SeedDefaults() error {
	for _, category := range model.DefaultCategories() {
		exists, err := r.db.Exists(category.GetKey())
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := r.db.Set(category); err != nil {
			return err
		}
	}
	return nil
}
