package service

import (
	"context"
	"testing"
	"time"

	"github.com/souqapp/classifieds-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestResolveTier(t *testing.T) {
	tests := []struct {
		name     string
		planName string
		tierID   int
		want     Tier
	}{
		{"empty", "", 0, TierFree},
		{"free plan", "Free", 0, TierFree},
		{"pro by name", "Pro Seller", 0, TierPro},
		{"shop by name", "shop-annual", 0, TierShop},
		{"shop wins over pro substring", "pro shop", 0, TierShop},
		{"legacy pro id", "", 2, TierPro},
		{"legacy shop id", "", 3, TierShop},
		{"unknown id", "", 9, TierFree},
		{"whitespace name falls back to id", "   ", 2, TierPro},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveTier(tt.planName, tt.tierID); got != tt.want {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestTierElevated(t *testing.T) {
	if TierFree.Elevated() {
		t.Fatal("free must not be elevated")
	}
	if !TierPro.Elevated() || !TierShop.Elevated() {
		t.Fatal("pro and shop must be elevated")
	}
}

func TestTierOfExpiredMembership(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMembershipService(newMembershipRepoForTest(env))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, env.db.Create(&model.Membership{
		UserUID:   "seller",
		PlanName:  "pro",
		ExpiresAt: &past,
	}).Error)

	tier, err := svc.TierOf(context.Background(), "seller")
	require.NoError(t, err)
	require.Equal(t, TierFree, tier, "expired memberships drop to free")
}

func TestTierOfActiveMembership(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMembershipService(newMembershipRepoForTest(env))

	future := time.Now().Add(24 * time.Hour)
	require.NoError(t, env.db.Create(&model.Membership{
		UserUID:   "seller",
		PlanName:  "shop",
		ExpiresAt: &future,
	}).Error)

	tier, err := svc.TierOf(context.Background(), "seller")
	require.NoError(t, err)
	require.Equal(t, TierShop, tier)

	// Unknown users are simply free.
	tier, err = svc.TierOf(context.Background(), "nobody")
	require.NoError(t, err)
	require.Equal(t, TierFree, tier)
}
