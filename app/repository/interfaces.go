package repository

import (
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	Count() (int64, error)
}

// NoteRepository defines the interface for study note operations
type NoteRepository interface {
	Create(note *models.Note) error
	GetByID(id uint) (*models.Note, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Note, error)
	CountByUserID(userID uint) (int64, error)
	Update(note *models.Note) error
	Delete(id uint) error
}

// PostRepository defines the interface for community post operations
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id uint) (*models.Post, error)
	GetRecent(offset, limit int) ([]models.Post, error)
	Count() (int64, error)
	Delete(id uint) error
	ToggleLike(userID, postID uint) (bool, error)
	LikedPostIDs(userID uint, postIDs []uint) (map[uint]bool, error)
}

// SermonRepository defines the interface for sermon draft operations
type SermonRepository interface {
	Create(sermon *models.Sermon) error
	GetByID(id uint) (*models.Sermon, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Sermon, error)
	Update(sermon *models.Sermon) error
	Delete(id uint) error
}

// DevotionalRepository defines the interface for devotional operations
type DevotionalRepository interface {
	Create(devotional *models.Devotional) error
	GetByID(id uint) (*models.Devotional, error)
	GetBySlug(slug string) (*models.Devotional, error)
	GetPublished(offset, limit int) ([]models.Devotional, error)
	CountPublished() (int64, error)
	Update(devotional *models.Devotional) error
	Delete(id uint) error
}

// HymnRepository defines the interface for hymnal persistence
type HymnRepository interface {
	Upsert(hymn *models.Hymn) error
	GetByNumber(number int) (*models.Hymn, error)
	Count() (int64, error)
}

// Repositories bundles all repository instances
type Repositories struct {
	User       UserRepository
	Note       NoteRepository
	Post       PostRepository
	Sermon     SermonRepository
	Devotional DevotionalRepository
	Hymn       HymnRepository
}

// NewRepositories creates all repositories backed by the given database
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Note:       NewNoteRepository(db),
		Post:       NewPostRepository(db),
		Sermon:     NewSermonRepository(db),
		Devotional: NewDevotionalRepository(db),
		Hymn:       NewHymnRepository(db),
	}
}
