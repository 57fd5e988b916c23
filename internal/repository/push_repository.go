package repository

import (
	"context"

	"github.com/souqapp/classifieds-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PushRepository interface {
	Save(ctx context.Context, sub *model.PushSubscription) error
	ListByUser(ctx context.Context, userUID string) ([]model.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

type pushRepository struct {
	db *gorm.DB
}

func NewPushRepository(db *gorm.DB) PushRepository {
	return &pushRepository{db: db}
}

func (r *pushRepository) Save(ctx context.Context, sub *model.PushSubscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_uid", "p256dh", "auth"}),
		}).
		Create(sub).Error
}

func (r *pushRepository) ListByUser(ctx context.Context, userUID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *pushRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	return r.db.WithContext(ctx).
		Where("endpoint = ?", endpoint).
		Delete(&model.PushSubscription{}).Error
}
