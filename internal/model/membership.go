package model

import "time"

// Membership is the raw billing record for a user. PlanName and TierID come
// from the billing side and are normalized into a Tier exactly once, in the
// membership service.
type Membership struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement"`
	UserUID   string     `gorm:"column:user_uid;size:128;uniqueIndex;not null"`
	PlanName  string     `gorm:"column:plan_name;size:64"`
	TierID    int        `gorm:"column:tier_id;not null;default:0"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (Membership) TableName() string {
	return "memberships"
}
