package repositories

import (
	"errors"

	"github.com/arashpm/uploadmaster/internal/models"
	"gorm.io/gorm"
)

// CategoryRepository handles category data operations.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category. Returns ErrDuplicateName when the display
// name is already taken.
func (r *CategoryRepository) Create(id, name string, createdBy int64) error {
	category := models.Category{ID: id, Name: name, CreatedBy: createdBy}
	err := withRetry(r.db, func() error {
		return r.db.Create(&category).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateName
	}
	return err
}

// List returns every category, newest first, each with its full file list
// in upload order. Files for all categories come back in a single query
// and are grouped in memory to keep the round-trip count flat.
func (r *CategoryRepository) List() ([]models.Category, error) {
	var categories []models.Category
	err := withRetry(r.db, func() error {
		return r.db.Order("created_at DESC").Find(&categories).Error
	})
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return categories, nil
	}

	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}

	var files []models.File
	err = withRetry(r.db, func() error {
		return r.db.Where("category_id IN ?", ids).
			Order("upload_date ASC, id ASC").
			Find(&files).Error
	})
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]models.File, len(categories))
	for _, f := range files {
		byCategory[f.CategoryID] = append(byCategory[f.CategoryID], f)
	}
	for i := range categories {
		categories[i].Files = byCategory[categories[i].ID]
	}
	return categories, nil
}

// Get returns the category with its files in upload order, or ErrNotFound.
func (r *CategoryRepository) Get(id string) (*models.Category, error) {
	var category models.Category
	err := withRetry(r.db, func() error {
		return r.db.
			Preload("Files", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("upload_date ASC, id ASC")
			}).
			First(&category, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes the category. Its files go with it through the cascading
// foreign key, never partially. Deleting a missing id is a no-op.
func (r *CategoryRepository) Delete(id string) error {
	return withRetry(r.db, func() error {
		return r.db.Delete(&models.Category{}, "id = ?", id).Error
	})
}
