package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellarclub/backend/internal/domain/club"
)

func TestGormLoyaltyConfigRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLoyaltyConfigRepository(db)
	ctx := context.Background()

	t.Run("returns ErrNotFound when no config exists", func(t *testing.T) {
		_, err := repo.FindForTenant(ctx, uuid.New())
		assert.ErrorIs(t, err, club.ErrNotFound)
	})

	t.Run("round-trips the tier loyalty mapping", func(t *testing.T) {
		tenantID := uuid.New()
		tierA := uuid.New()
		tierB := uuid.New()

		cfg := club.NewLoyaltyConfig(tenantID)
		cfg.Enabled = true
		cfg.WelcomeBonusPoints = 500
		cfg.PointsPerDollar = 3
		cfg.SetTierLoyaltyID(tierA, "lt-100")
		cfg.SetTierLoyaltyID(tierB, "lt-200")

		require.NoError(t, repo.Save(ctx, cfg))

		found, err := repo.FindForTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.True(t, found.Enabled)
		assert.Equal(t, int64(500), found.WelcomeBonusPoints)
		assert.Equal(t, int64(3), found.PointsPerDollar)
		assert.Equal(t, "lt-100", found.TierLoyaltyIDs[tierA])
		assert.Equal(t, "lt-200", found.TierLoyaltyIDs[tierB])
	})

	t.Run("saving again replaces the mapping", func(t *testing.T) {
		tenantID := uuid.New()
		tierID := uuid.New()

		cfg := club.NewLoyaltyConfig(tenantID)
		cfg.SetTierLoyaltyID(tierID, "lt-old")
		require.NoError(t, repo.Save(ctx, cfg))

		cfg.RemoveTier(tierID)
		require.NoError(t, repo.Save(ctx, cfg))

		found, err := repo.FindForTenant(ctx, tenantID)
		require.NoError(t, err)
		assert.Empty(t, found.TierLoyaltyIDs)
	})
}
