package model

import "time"

type Item struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerUID string    `gorm:"column:seller_uid;size:128;index;not null" json:"sellerUid"`
	Title     string    `gorm:"size:120;not null" json:"title"`
	Price     uint      `gorm:"not null" json:"price"`
	ImageURL  *string   `gorm:"size:512" json:"imageUrl,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Item) TableName() string {
	return "items"
}
