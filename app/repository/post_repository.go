package repository

import (
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
)

// postRepository implements the PostRepository interface
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository instance
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create creates a new community post in the database
func (r *postRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetByID retrieves a post by its ID
func (r *postRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("User").First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetRecent retrieves the community feed with pagination, newest first
func (r *postRepository) GetRecent(offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("User").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

// Count returns the total number of posts
func (r *postRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Count(&count).Error
	return count, err
}

// Delete soft deletes a post by its ID
func (r *postRepository) Delete(id uint) error {
	return r.db.Delete(&models.Post{}, id).Error
}

// ToggleLike flips the user's like on a post and keeps the denormalized
// counter in step.
func (r *postRepository) ToggleLike(userID, postID uint) (bool, error) {
	liked, err := models.TogglePostLike(r.db, userID, postID)
	if err != nil {
		return false, err
	}

	delta := int64(-1)
	if liked {
		delta = 1
	}
	err = r.db.Model(&models.Post{}).Where("id = ?", postID).
		Update("like_count", gorm.Expr("GREATEST(CAST(like_count AS SIGNED) + ?, 0)", delta)).Error
	return liked, err
}

// LikedPostIDs reports which of the given posts the user has liked
func (r *postRepository) LikedPostIDs(userID uint, postIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if len(postIDs) == 0 {
		return liked, nil
	}

	var likes []models.PostLike
	err := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&likes).Error
	if err != nil {
		return nil, err
	}
	for _, l := range likes {
		liked[l.PostID] = true
	}
	return liked, nil
}
