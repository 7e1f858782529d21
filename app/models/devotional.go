package models

import (
	"time"

	"gorm.io/gorm"
)

// Devotional is a daily reading with a scripture anchor. Premium devotionals
// carry extended commentary and are entitlement gated.
type Devotional struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"type:varchar(255)" json:"title" validate:"required,min=3,max=255"`
	Slug      string         `gorm:"uniqueIndex;type:varchar(255)" json:"slug" validate:"required,min=3,max=255"`
	Reference string         `gorm:"type:varchar(100)" json:"reference"`
	Body      string         `gorm:"type:text" json:"body" validate:"required"`
	Extended  string         `gorm:"type:text" json:"extended,omitempty"`
	Premium   bool           `gorm:"default:false" json:"premium"`
	Published bool           `gorm:"default:false" json:"published"`
	UserID    uint           `gorm:"index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	ViewCount uint64         `gorm:"default:0" json:"view_count"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Devotional) TableName() string {
	return "devotionals"
}
