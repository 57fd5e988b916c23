package model

import "time"

// UserBlock is a directed block. Send checks consult both directions.
type UserBlock struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	BlockerUID string    `gorm:"column:blocker_uid;size:128;index:idx_blocker_blocked,unique;not null"`
	BlockedUID string    `gorm:"column:blocked_uid;size:128;index:idx_blocker_blocked,unique;index;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (UserBlock) TableName() string {
	return "user_blocks"
}
