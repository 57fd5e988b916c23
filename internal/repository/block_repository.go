package repository

import (
	"context"

	"github.com/souqapp/classifieds-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlockRepository interface {
	Block(ctx context.Context, blockerUID, blockedUID string) error
	Unblock(ctx context.Context, blockerUID, blockedUID string) error
	Exists(ctx context.Context, blockerUID, blockedUID string) (bool, error)
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) Block(ctx context.Context, blockerUID, blockedUID string) error {
	row := model.UserBlock{BlockerUID: blockerUID, BlockedUID: blockedUID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (r *blockRepository) Unblock(ctx context.Context, blockerUID, blockedUID string) error {
	return r.db.WithContext(ctx).
		Where("blocker_uid = ? AND blocked_uid = ?", blockerUID, blockedUID).
		Delete(&model.UserBlock{}).Error
}

func (r *blockRepository) Exists(ctx context.Context, blockerUID, blockedUID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.UserBlock{}).
		Where("blocker_uid = ? AND blocked_uid = ?", blockerUID, blockedUID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}
