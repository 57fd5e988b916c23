package model

import "time"

// SellerChatSettings holds a seller's auto-reply configuration. Vacation mode
// wins over the standard auto-reply when both are enabled.
type SellerChatSettings struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SellerUID        string    `gorm:"column:seller_uid;size:128;uniqueIndex;not null" json:"sellerUid"`
	VacationMode     bool      `gorm:"column:vacation_mode;not null;default:false" json:"vacationMode"`
	VacationMessage  string    `gorm:"column:vacation_message;type:text" json:"vacationMessage"`
	AutoReplyEnabled bool      `gorm:"column:auto_reply_enabled;not null;default:false" json:"autoReplyEnabled"`
	AutoReplyMessage string    `gorm:"column:auto_reply_message;type:text" json:"autoReplyMessage"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (SellerChatSettings) TableName() string {
	return "seller_chat_settings"
}
