package repository

import (
	"context"

	"github.com/souqapp/classifieds-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	FindBySeller(ctx context.Context, sellerUID string) (*model.SellerChatSettings, error)
	Upsert(ctx context.Context, s *model.SellerChatSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// FindBySeller returns nil (no error) when the seller never saved settings.
func (r *settingsRepository) FindBySeller(ctx context.Context, sellerUID string) (*model.SellerChatSettings, error) {
	var s model.SellerChatSettings
	err := r.db.WithContext(ctx).
		Where("seller_uid = ?", sellerUID).
		First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, s *model.SellerChatSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seller_uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"vacation_mode", "vacation_message", "auto_reply_enabled", "auto_reply_message"}),
		}).
		Create(s).Error
}
