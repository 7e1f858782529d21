package repository

import (
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
)

// noteRepository implements the NoteRepository interface
type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new note repository instance
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

// Create creates a new note in the database
func (r *noteRepository) Create(note *models.Note) error {
	return r.db.Create(note).Error
}

// GetByID retrieves a note by its ID
func (r *noteRepository) GetByID(id uint) (*models.Note, error) {
	var note models.Note
	err := r.db.First(&note, id).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// GetByUserID retrieves a user's notes with pagination, newest first
func (r *noteRepository) GetByUserID(userID uint, offset, limit int) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").Offset(offset).Limit(limit).Find(&notes).Error
	return notes, err
}

// CountByUserID returns the number of notes a user owns
func (r *noteRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Note{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Update updates an existing note in the database
func (r *noteRepository) Update(note *models.Note) error {
	return r.db.Save(note).Error
}

// Delete soft deletes a note by its ID
func (r *noteRepository) Delete(id uint) error {
	return r.db.Delete(&models.Note{}, id).Error
}
