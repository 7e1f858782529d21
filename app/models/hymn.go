package models

import (
	"time"

	"gorm.io/gorm"
)

// Hymn is a hymnal entry. Stanzas are stored as JSON so imported hymnals keep
// their original verse ordering.
type Hymn struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Number      int            `gorm:"uniqueIndex;not null" json:"number"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	StanzasJSON string         `gorm:"type:longtext;not null" json:"-"`
	Chorus      string         `gorm:"type:text" json:"chorus"`
	Author      string         `gorm:"type:varchar(200)" json:"author"`
	ViewCount   uint64         `gorm:"default:0" json:"view_count"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Hymn) TableName() string {
	return "hymns"
}
