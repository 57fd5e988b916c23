package model

import "time"

// PushSubscription is one browser's Web Push endpoint for a user. Expired
// endpoints (404/410 from the push service) are deleted on send.
type PushSubscription struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserUID   string    `gorm:"column:user_uid;size:128;index;not null"`
	Endpoint  string    `gorm:"column:endpoint;size:512;uniqueIndex;not null"`
	KeyP256dh string    `gorm:"column:p256dh;size:256;not null"`
	KeyAuth   string    `gorm:"column:auth;size:256;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
