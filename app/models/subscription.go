package models

import "time"

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
)

// Subscription is the persisted entitlement record for a user. There is at
// most one row per user; the subscription store is the only writer.
type Subscription struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Tier      string     `gorm:"type:varchar(20);not null;default:'free'" json:"tier"`
	Active    bool       `gorm:"not null;default:false" json:"active"`
	ExpiresAt *time.Time `gorm:"type:timestamp;default:null" json:"expires_at"`
	Status    string     `gorm:"type:varchar(20);not null;default:'expired'" json:"status"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
