package loyalty

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/crm"
)

// BonusDispatcher awards loyalty points as a best-effort side effect of
// enrollment. A failed award never reaches the caller; it lands in the
// side-effect log for operators to reconcile.
type BonusDispatcher struct {
	factory     crm.ProviderFactory
	sideEffects club.SideEffectLogRepository
	logger      *zap.Logger
}

// NewBonusDispatcher creates a bonus dispatcher
func NewBonusDispatcher(factory crm.ProviderFactory, sideEffects club.SideEffectLogRepository, logger *zap.Logger) *BonusDispatcher {
	return &BonusDispatcher{
		factory:     factory,
		sideEffects: sideEffects,
		logger:      logger,
	}
}

// Award credits points to a customer. Zero or negative points are a no-op.
func (d *BonusDispatcher) Award(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode, customerExternalID string, points int64, label string) {
	if points <= 0 {
		return
	}

	provider, err := d.factory.Provider(ctx, tenantID, platform)
	if err != nil {
		d.recordFailure(ctx, tenantID, customerExternalID, err)
		return
	}

	if err := provider.PreloadBonusPoints(ctx, tenantID, customerExternalID, points, label); err != nil {
		d.recordFailure(ctx, tenantID, customerExternalID, err)
		return
	}

	d.logger.Info("loyalty bonus awarded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("customer_id", customerExternalID),
		zap.Int64("points", points))
}

func (d *BonusDispatcher) recordFailure(ctx context.Context, tenantID uuid.UUID, customerExternalID string, cause error) {
	d.logger.Warn("loyalty bonus failed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("customer_id", customerExternalID),
		zap.Error(cause))

	entry := club.NewSideEffectLog(tenantID, club.SideEffectLoyaltyBonus, customerExternalID, cause.Error())
	if err := d.sideEffects.Save(ctx, entry); err != nil {
		d.logger.Error("failed to record side-effect log entry",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
}
