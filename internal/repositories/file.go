package repositories

import (
	"errors"
	"log"

	"github.com/arashpm/uploadmaster/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FileRepository handles file data operations. Only Telegram file_id
// tokens are stored, never file bytes.
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Add inserts a single file into a category. A duplicate file_id is a
// no-op and reports false rather than an error.
func (r *FileRepository) Add(categoryID string, file models.File) (bool, error) {
	file.ID = 0
	file.CategoryID = categoryID
	err := withRetry(r.db, func() error {
		return r.db.Create(&file).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		log.Printf("File %s already exists", file.FileID)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddBatch inserts many files in one transaction. Duplicate file_id rows
// are skipped individually; any other failure rolls back the whole batch.
// The batch is deliberately outside the retry wrapper.
func (r *FileRepository) AddBatch(categoryID string, files []models.File) error {
	if len(files) == 0 {
		return nil
	}
	for i := range files {
		files[i].ID = 0
		files[i].CategoryID = categoryID
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "file_id"}},
			DoNothing: true,
		}).Create(&files).Error
	})
}

// DeleteAt removes the file at the given zero-based position in the
// category's upload-time ordering. Reports false when the index is out of
// range; the stored files are then unchanged.
func (r *FileRepository) DeleteAt(categoryID string, index int) (bool, error) {
	if index < 0 {
		return false, nil
	}
	var files []models.File
	err := withRetry(r.db, func() error {
		return r.db.Where("category_id = ?", categoryID).
			Order("upload_date ASC, id ASC").
			Offset(index).Limit(1).
			Find(&files).Error
	})
	if err != nil {
		return false, err
	}
	if len(files) == 0 {
		return false, nil
	}
	err = withRetry(r.db, func() error {
		return r.db.Delete(&files[0]).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
