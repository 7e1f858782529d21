package models

import (
	"time"

	"gorm.io/gorm"
)

// Note is a private study note, optionally anchored to a scripture reference.
type Note struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title     string         `gorm:"type:varchar(255)" json:"title" validate:"required,min=1,max=255"`
	Content   string         `gorm:"type:text" json:"content" validate:"required"`
	Reference string         `gorm:"type:varchar(100)" json:"reference"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Note) TableName() string {
	return "notes"
}
