package model

import "time"

type FlagType string

const (
	FlagArchived FlagType = "archived"
	FlagDeleted  FlagType = "deleted"
	FlagPinned   FlagType = "pinned"
	FlagMuted    FlagType = "muted"
)

// ConversationFlag is one per-user facet toggle on a conversation. For the
// deleted flag the row's CreatedAt doubles as the deletion timestamp, so the
// membership and its timestamp can never drift apart.
type ConversationFlag struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	ConversationID uint64    `gorm:"column:conversation_id;index:idx_conv_user_flag,unique;not null"`
	UserUID        string    `gorm:"column:user_uid;size:128;index:idx_conv_user_flag,unique;not null"`
	Flag           FlagType  `gorm:"column:flag;size:16;index:idx_conv_user_flag,unique;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (ConversationFlag) TableName() string {
	return "conversation_flags"
}
