package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellarclub/backend/internal/domain/club"
)

func TestGormTierPromotionRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTierPromotionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	tierID := uuid.New()

	t.Run("saves and finds a promotion record", func(t *testing.T) {
		record := club.NewTierPromotion(tenantID, tierID, "10% Off Reds")
		record.SetExternal("promo-42", "10% Off Reds")

		require.NoError(t, repo.Save(ctx, record))

		found, err := repo.FindByID(ctx, tenantID, record.ID)
		require.NoError(t, err)
		assert.Equal(t, "promo-42", found.ExternalPromotionID)
		assert.Equal(t, "10% Off Reds", found.Title)
		assert.True(t, found.IsSynced())
	})

	t.Run("returns ErrNotFound for missing record", func(t *testing.T) {
		_, err := repo.FindByID(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, club.ErrNotFound)
	})

	t.Run("unsynced record round-trips without external id", func(t *testing.T) {
		record := club.NewTierPromotion(tenantID, tierID, "Pending Promo")
		require.NoError(t, repo.Save(ctx, record))

		found, err := repo.FindByID(ctx, tenantID, record.ID)
		require.NoError(t, err)
		assert.False(t, found.IsSynced())
	})
}

func TestGormTierPromotionRepository_FindByTier(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTierPromotionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	tierID := uuid.New()

	first := club.NewTierPromotion(tenantID, tierID, "First")
	second := club.NewTierPromotion(tenantID, tierID, "Second")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	other := club.NewTierPromotion(tenantID, uuid.New(), "Other Tier")
	for _, record := range []*club.TierPromotion{second, first, other} {
		require.NoError(t, repo.Save(ctx, record))
	}

	records, err := repo.FindByTier(ctx, tenantID, tierID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "First", records[0].Title)
	assert.Equal(t, "Second", records[1].Title)
}

func TestGormTierPromotionRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTierPromotionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	tierID := uuid.New()

	t.Run("deletes a single record", func(t *testing.T) {
		record := club.NewTierPromotion(tenantID, tierID, "Doomed")
		require.NoError(t, repo.Save(ctx, record))

		require.NoError(t, repo.Delete(ctx, tenantID, record.ID))

		_, err := repo.FindByID(ctx, tenantID, record.ID)
		assert.ErrorIs(t, err, club.ErrNotFound)
	})

	t.Run("returns ErrNotFound for missing record", func(t *testing.T) {
		err := repo.Delete(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, club.ErrNotFound)
	})

	t.Run("deletes all records for a tier", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, club.NewTierPromotion(tenantID, tierID, "A")))
		require.NoError(t, repo.Save(ctx, club.NewTierPromotion(tenantID, tierID, "B")))

		require.NoError(t, repo.DeleteByTier(ctx, tenantID, tierID))

		records, err := repo.FindByTier(ctx, tenantID, tierID)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("deleting by tier with no records is not an error", func(t *testing.T) {
		assert.NoError(t, repo.DeleteByTier(ctx, tenantID, uuid.New()))
	})
}
