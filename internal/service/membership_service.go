package service

import (
	"context"
	"strings"
	"time"

	"github.com/souqapp/classifieds-backend/internal/repository"
)

type Tier int

const (
	TierFree Tier = iota
	TierPro
	TierShop
)

func (t Tier) String() string {
	switch t {
	case TierPro:
		return "pro"
	case TierShop:
		return "shop"
	}
	return "free"
}

// Elevated tiers unlock auto-reply and other seller tooling.
func (t Tier) Elevated() bool {
	return t == TierPro || t == TierShop
}

type MembershipService interface {
	TierOf(ctx context.Context, uid string) (Tier, error)
}

type membershipService struct {
	repo repository.MembershipRepository
}

func NewMembershipService(repo repository.MembershipRepository) MembershipService {
	return &membershipService{repo: repo}
}

// TierOf resolves the billing record into the tier enum. This is the only
// place plan names or tier ids are interpreted.
func (s *membershipService) TierOf(ctx context.Context, uid string) (Tier, error) {
	m, err := s.repo.FindByUser(ctx, uid)
	if err != nil {
		return TierFree, err
	}
	if m == nil {
		return TierFree, nil
	}
	if m.ExpiresAt != nil && m.ExpiresAt.Before(time.Now()) {
		return TierFree, nil
	}
	return resolveTier(m.PlanName, m.TierID), nil
}

func resolveTier(planName string, tierID int) Tier {
	switch name := strings.ToLower(strings.TrimSpace(planName)); {
	case strings.Contains(name, "shop"):
		return TierShop
	case strings.Contains(name, "pro"):
		return TierPro
	}
	// Legacy rows carry only the numeric tier id.
	switch tierID {
	case 2:
		return TierPro
	case 3:
		return TierShop
	}
	return TierFree
}
