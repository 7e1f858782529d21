package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SermonStatusDraft    = "draft"
	SermonStatusPreached = "preached"
	SermonStatusArchived = "archived"
)

// Sermon is a sermon draft owned by a user. Drafting is a paid feature.
type Sermon struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title     string         `gorm:"type:varchar(255)" json:"title" validate:"required,min=1,max=255"`
	Reference string         `gorm:"type:varchar(100)" json:"reference"`
	Outline   string         `gorm:"type:text" json:"outline"`
	Body      string         `gorm:"type:text" json:"body"`
	Status    string         `gorm:"type:varchar(20);default:'draft'" json:"status" validate:"oneof=draft preached archived"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Sermon) TableName() string {
	return "sermons"
}
