package model

import "time"

// Conversation is the single chat/offer thread between one buyer and the
// seller of one item. A buyer gets at most one conversation per item.
type Conversation struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID        uint64    `gorm:"column:item_id;index:idx_item_buyer,unique" json:"itemId"`
	SellerUID     string    `gorm:"column:seller_uid;size:128;index" json:"sellerUid"`
	BuyerUID      string    `gorm:"column:buyer_uid;size:128;index:idx_item_buyer,unique" json:"buyerUid"`
	Amount        *uint     `gorm:"column:amount" json:"amount,omitempty"`
	LastMessageAt time.Time `gorm:"column:last_message_at;index" json:"lastMessageAt"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// CounterpartOf returns the other participant's uid, or "" when uid is not a
// participant at all.
func (c *Conversation) CounterpartOf(uid string) string {
	switch uid {
	case c.BuyerUID:
		return c.SellerUID
	case c.SellerUID:
		return c.BuyerUID
	}
	return ""
}

func (c *Conversation) HasParticipant(uid string) bool {
	return uid != "" && (uid == c.BuyerUID || uid == c.SellerUID)
}
