package service

import (
	"context"

	"github.com/souqapp/classifieds-backend/internal/repository"
)

type BlockService interface {
	Block(ctx context.Context, blockerUID, blockedUID string) error
	Unblock(ctx context.Context, blockerUID, blockedUID string) error
}

type blockService struct {
	repo repository.BlockRepository
}

func NewBlockService(repo repository.BlockRepository) BlockService {
	return &blockService{repo: repo}
}

func (s *blockService) Block(ctx context.Context, blockerUID, blockedUID string) error {
	if blockedUID == "" || blockedUID == blockerUID {
		return newValidationError("uid", "invalid block target")
	}
	return s.repo.Block(ctx, blockerUID, blockedUID)
}

func (s *blockService) Unblock(ctx context.Context, blockerUID, blockedUID string) error {
	return s.repo.Unblock(ctx, blockerUID, blockedUID)
}
