package repository

import (
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
)

// sermonRepository implements the SermonRepository interface
type sermonRepository struct {
	db *gorm.DB
}

// NewSermonRepository creates a new sermon repository instance
func NewSermonRepository(db *gorm.DB) SermonRepository {
	return &sermonRepository{db: db}
}

// Create creates a new sermon draft in the database
func (r *sermonRepository) Create(sermon *models.Sermon) error {
	return r.db.Create(sermon).Error
}

// GetByID retrieves a sermon by its ID
func (r *sermonRepository) GetByID(id uint) (*models.Sermon, error) {
	var sermon models.Sermon
	err := r.db.First(&sermon, id).Error
	if err != nil {
		return nil, err
	}
	return &sermon, nil
}

// GetByUserID retrieves a user's sermons with pagination, newest first
func (r *sermonRepository) GetByUserID(userID uint, offset, limit int) ([]models.Sermon, error) {
	var sermons []models.Sermon
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").Offset(offset).Limit(limit).Find(&sermons).Error
	return sermons, err
}

// Update updates an existing sermon in the database
func (r *sermonRepository) Update(sermon *models.Sermon) error {
	return r.db.Save(sermon).Error
}

// Delete soft deletes a sermon by its ID
func (r *sermonRepository) Delete(id uint) error {
	return r.db.Delete(&models.Sermon{}, id).Error
}
