package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string         `gorm:"type:text" json:"content" validate:"required,min=1,max=4000"`
	Reference string         `gorm:"type:varchar(100)" json:"reference"`
	LikeCount uint64         `gorm:"default:0" json:"like_count"`
	ViewCount uint64         `gorm:"default:0" json:"view_count"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}

type PostLike struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index:ux_post_likes_user_post,unique,priority:1" json:"user_id"`
	PostID    uint           `gorm:"index:ux_post_likes_user_post,unique,priority:2" json:"post_id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TogglePostLike creates or removes a like for the given user/post pair.
func TogglePostLike(db *gorm.DB, userID, postID uint) (liked bool, err error) {
	var like PostLike
	result := db.Where("user_id = ? AND post_id = ?", userID, postID).First(&like)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			newLike := PostLike{
				UserID: userID,
				PostID: postID,
			}
			return true, db.Create(&newLike).Error
		}
		return false, result.Error
	}

	return false, db.Delete(&like).Error
}
