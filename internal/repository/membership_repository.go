package repository

import (
	"context"

	"github.com/souqapp/classifieds-backend/internal/model"
	"gorm.io/gorm"
)

type MembershipRepository interface {
	FindByUser(ctx context.Context, uid string) (*model.Membership, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) FindByUser(ctx context.Context, uid string) (*model.Membership, error) {
	var m model.Membership
	err := r.db.WithContext(ctx).
		Where("user_uid = ?", uid).
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
