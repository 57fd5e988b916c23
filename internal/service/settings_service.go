package service

import (
	"context"

	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/souqapp/classifieds-backend/internal/repository"
)

type SettingsService interface {
	Get(ctx context.Context, sellerUID string) (*model.SellerChatSettings, error)
	Update(ctx context.Context, s *model.SellerChatSettings) error
}

type settingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

// Get never returns nil settings; sellers without a saved row get defaults.
func (s *settingsService) Get(ctx context.Context, sellerUID string) (*model.SellerChatSettings, error) {
	row, err := s.repo.FindBySeller(ctx, sellerUID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return &model.SellerChatSettings{SellerUID: sellerUID}, nil
	}
	return row, nil
}

func (s *settingsService) Update(ctx context.Context, settings *model.SellerChatSettings) error {
	if settings.SellerUID == "" {
		return newValidationError("sellerUid", "is required")
	}
	if settings.VacationMode && settings.VacationMessage == "" {
		return newValidationError("vacationMessage", "required when vacation mode is on")
	}
	if settings.AutoReplyEnabled && settings.AutoReplyMessage == "" {
		return newValidationError("autoReplyMessage", "required when auto reply is on")
	}
	return s.repo.Upsert(ctx, settings)
}
