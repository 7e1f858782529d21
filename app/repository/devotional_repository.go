package repository

import (
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
)

// devotionalRepository implements the DevotionalRepository interface
type devotionalRepository struct {
	db *gorm.DB
}

// NewDevotionalRepository creates a new devotional repository instance
func NewDevotionalRepository(db *gorm.DB) DevotionalRepository {
	return &devotionalRepository{db: db}
}

// Create creates a new devotional in the database
func (r *devotionalRepository) Create(devotional *models.Devotional) error {
	return r.db.Create(devotional).Error
}

// GetByID retrieves a devotional by its ID
func (r *devotionalRepository) GetByID(id uint) (*models.Devotional, error) {
	var devotional models.Devotional
	err := r.db.Preload("User").First(&devotional, id).Error
	if err != nil {
		return nil, err
	}
	return &devotional, nil
}

// GetBySlug retrieves a devotional by its slug
func (r *devotionalRepository) GetBySlug(slug string) (*models.Devotional, error) {
	var devotional models.Devotional
	err := r.db.Preload("User").Where("slug = ?", slug).First(&devotional).Error
	if err != nil {
		return nil, err
	}
	return &devotional, nil
}

// GetPublished retrieves published devotionals with pagination, oldest first
// so the daily rotation is stable.
func (r *devotionalRepository) GetPublished(offset, limit int) ([]models.Devotional, error) {
	var devotionals []models.Devotional
	err := r.db.Preload("User").Where("published = ?", true).
		Order("id ASC").Offset(offset).Limit(limit).Find(&devotionals).Error
	return devotionals, err
}

// CountPublished returns the number of published devotionals
func (r *devotionalRepository) CountPublished() (int64, error) {
	var count int64
	err := r.db.Model(&models.Devotional{}).Where("published = ?", true).Count(&count).Error
	return count, err
}

// Update updates an existing devotional in the database
func (r *devotionalRepository) Update(devotional *models.Devotional) error {
	return r.db.Save(devotional).Error
}

// Delete soft deletes a devotional by its ID
func (r *devotionalRepository) Delete(id uint) error {
	return r.db.Delete(&models.Devotional{}, id).Error
}
