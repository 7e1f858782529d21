package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verbumapp/verbum/app/models"
)

// hymnRepository implements the HymnRepository interface
type hymnRepository struct {
	db *gorm.DB
}

// NewHymnRepository creates a new hymn repository instance
func NewHymnRepository(db *gorm.DB) HymnRepository {
	return &hymnRepository{db: db}
}

// Upsert inserts or replaces a hymn keyed by its number, used by hymnal
// imports.
func (r *hymnRepository) Upsert(hymn *models.Hymn) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "stanzas_json", "chorus", "author"}),
	}).Create(hymn).Error
}

// GetByNumber retrieves a hymn by its hymnal number
func (r *hymnRepository) GetByNumber(number int) (*models.Hymn, error) {
	var hymn models.Hymn
	err := r.db.Where("number = ?", number).First(&hymn).Error
	if err != nil {
		return nil, err
	}
	return &hymn, nil
}

// Count returns the number of hymns stored
func (r *hymnRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Hymn{}).Count(&count).Error
	return count, err
}
