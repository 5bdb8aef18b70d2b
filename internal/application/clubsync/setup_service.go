package clubsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cellarclub/backend/internal/domain/club"
	"github.com/cellarclub/backend/internal/domain/crm"
	"github.com/cellarclub/backend/internal/domain/promotion"
)

// SetupService reconciles the submitted club configuration against local
// state and the remote platform. One call handles creates, updates and
// removals; remote failures during tier sync degrade to warnings while
// the final loyalty step is all-or-nothing.
type SetupService struct {
	tiers   club.TierRepository
	promos  club.TierPromotionRepository
	loyalty club.LoyaltyConfigRepository
	factory crm.ProviderFactory
	logger  *zap.Logger
}

// NewSetupService creates a club setup service
func NewSetupService(
	tiers club.TierRepository,
	promos club.TierPromotionRepository,
	loyalty club.LoyaltyConfigRepository,
	factory crm.ProviderFactory,
	logger *zap.Logger,
) *SetupService {
	return &SetupService{
		tiers:   tiers,
		promos:  promos,
		loyalty: loyalty,
		factory: factory,
		logger:  logger,
	}
}

// setupState accumulates per-call bookkeeping for warnings and for the
// compensation pass should the loyalty step fail
type setupState struct {
	warnings []SyncWarning
	// processed is every tier that survived this call, in stage order
	processed []*club.Tier
	// createdClubs maps tiers whose remote club was created in this call
	createdClubs []*club.Tier
	// createdLoyaltyTiers are remote loyalty tier ids created in this call
	createdLoyaltyTiers []string
	// deletedTierIDs are local tiers removed in this call
	deletedTierIDs []uuid.UUID
}

func (s *setupState) warn(tierName, promotionID, message string) {
	s.warnings = append(s.warnings, SyncWarning{
		TierName:    tierName,
		PromotionID: promotionID,
		Message:     message,
	})
}

// =============================================================================
// ApplyTierSet
// =============================================================================

// ApplyTierSet reconciles the full submitted configuration. The returned
// result carries a warning per remote call that failed; the error is
// non-nil only for fatal conditions (local persistence, loyalty step).
// On a fatal loyalty failure the result is still returned so callers can
// surface warnings collected before and during compensation.
func (s *SetupService) ApplyTierSet(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode, req SetupRequest) (*SetupResult, error) {
	provider, err := s.factory.Provider(ctx, tenantID, platform)
	if err != nil {
		return nil, err
	}

	existing, err := s.tiers.FindActiveForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tiers: %w", err)
	}
	existingByID := make(map[uuid.UUID]*club.Tier, len(existing))
	for _, t := range existing {
		existingByID[t.ID] = t
	}

	state := &setupState{}

	// Removals first so freed names and stage slots cannot collide with
	// the rows being written below.
	submitted := make(map[uuid.UUID]bool, len(req.Tiers))
	for _, sub := range req.Tiers {
		if !IsNewID(sub.ID) {
			if id, err := uuid.Parse(sub.ID); err == nil {
				submitted[id] = true
			}
		}
	}
	for _, t := range existing {
		if !submitted[t.ID] {
			if err := s.removeTier(ctx, provider, tenantID, t, state); err != nil {
				return nil, err
			}
		}
	}

	// Submitted order defines stage order.
	for i, sub := range req.Tiers {
		var err error
		if IsNewID(sub.ID) {
			err = s.createTier(ctx, provider, tenantID, sub, i, state)
		} else {
			err = s.updateTier(ctx, provider, tenantID, existingByID, sub, i, state)
		}
		if err != nil {
			return nil, err
		}
	}

	// Loyalty runs last and is fatal on failure.
	if err := s.applyLoyalty(ctx, provider, tenantID, req.Loyalty, state); err != nil {
		return s.buildResult(ctx, tenantID, state), err
	}

	return s.buildResult(ctx, tenantID, state), nil
}

func (s *SetupService) buildResult(ctx context.Context, tenantID uuid.UUID, state *setupState) *SetupResult {
	result := &SetupResult{
		Tiers:    make([]TierView, 0, len(state.processed)),
		Warnings: state.warnings,
	}
	if result.Warnings == nil {
		result.Warnings = []SyncWarning{}
	}
	for _, t := range state.processed {
		promos, err := s.promos.FindByTier(ctx, tenantID, t.ID)
		if err != nil {
			s.logger.Warn("failed to load promotion records for result",
				zap.String("tier", t.Name), zap.Error(err))
			promos = nil
		}
		result.Tiers = append(result.Tiers, ToTierView(t, promos))
	}
	return result
}

// =============================================================================
// Tier Sync
// =============================================================================

func (s *SetupService) createTier(ctx context.Context, provider crm.CRMProvider, tenantID uuid.UUID, sub TierSubmission, stageOrder int, state *setupState) error {
	t, err := club.NewTier(tenantID, sub.Name, sub.DurationMonths)
	if err != nil {
		return err
	}
	t.MinPurchaseCents = sub.MinPurchaseCents
	t.MinLTVCents = sub.MinLTVCents
	t.Upgradable = sub.Upgradable
	t.StageOrder = stageOrder

	extID, err := provider.UpsertClub(ctx, tenantID, crm.ClubUpsert{
		Name:             t.Name,
		DurationMonths:   t.DurationMonths,
		MinPurchaseCents: t.MinPurchaseCents,
		StageOrder:       t.StageOrder,
	})
	if err != nil {
		s.logger.Warn("club creation failed",
			zap.String("tier", t.Name), zap.Error(err))
		state.warn(t.Name, "", "club creation failed: "+err.Error())
	} else {
		t.SetExternalClubID(extID)
		state.createdClubs = append(state.createdClubs, t)
	}

	if err := s.tiers.Save(ctx, t); err != nil {
		return fmt.Errorf("save tier %s: %w", t.Name, err)
	}
	state.processed = append(state.processed, t)

	// Promotions need a club to attach to; without one they would land
	// store-wide on the wrong audience.
	if !t.IsSynced() {
		for _, p := range sub.Promotions {
			state.warn(t.Name, p.ID, "promotion skipped: tier has no remote club")
		}
		return nil
	}

	for _, p := range sub.Promotions {
		if err := s.createPromotion(ctx, provider, tenantID, t, p.Discount, state); err != nil {
			return err
		}
	}
	return nil
}

func (s *SetupService) updateTier(ctx context.Context, provider crm.CRMProvider, tenantID uuid.UUID, existingByID map[uuid.UUID]*club.Tier, sub TierSubmission, stageOrder int, state *setupState) error {
	id, err := uuid.Parse(sub.ID)
	if err != nil {
		state.warn(sub.Name, "", "malformed tier id: "+sub.ID)
		return nil
	}
	t, ok := existingByID[id]
	if !ok {
		state.warn(sub.Name, "", "unknown tier id: "+sub.ID)
		return nil
	}

	t.Name = sub.Name
	t.DurationMonths = sub.DurationMonths
	t.MinPurchaseCents = sub.MinPurchaseCents
	t.MinLTVCents = sub.MinLTVCents
	t.Upgradable = sub.Upgradable
	t.StageOrder = stageOrder

	upsert := crm.ClubUpsert{
		Name:             t.Name,
		DurationMonths:   t.DurationMonths,
		MinPurchaseCents: t.MinPurchaseCents,
		StageOrder:       t.StageOrder,
	}
	if t.ExternalClubID != nil {
		upsert.ExternalID = *t.ExternalClubID
	}
	extID, err := provider.UpsertClub(ctx, tenantID, upsert)
	if err != nil {
		s.logger.Warn("club upsert failed",
			zap.String("tier", t.Name), zap.Error(err))
		state.warn(t.Name, "", "club upsert failed: "+err.Error())
	} else {
		wasSynced := t.IsSynced()
		t.SetExternalClubID(extID)
		if !wasSynced {
			state.createdClubs = append(state.createdClubs, t)
		}
	}

	if err := s.tiers.Save(ctx, t); err != nil {
		return fmt.Errorf("save tier %s: %w", t.Name, err)
	}
	state.processed = append(state.processed, t)

	return s.syncPromotions(ctx, provider, tenantID, t, sub.Promotions, state)
}

// syncPromotions reconciles one tier's promotion rows: updates submitted
// records, recreates drifted ones, creates new ones and removes omitted
// ones. Remote failures become warnings.
func (s *SetupService) syncPromotions(ctx context.Context, provider crm.CRMProvider, tenantID uuid.UUID, t *club.Tier, subs []PromotionSubmission, state *setupState) error {
	records, err := s.promos.FindByTier(ctx, tenantID, t.ID)
	if err != nil {
		return fmt.Errorf("load promotions for tier %s: %w", t.Name, err)
	}
	recordByID := make(map[uuid.UUID]*club.TierPromotion, len(records))
	for _, r := range records {
		recordByID[r.ID] = r
	}

	clubExtID := ""
	if t.ExternalClubID != nil {
		clubExtID = *t.ExternalClubID
	}

	submitted := make(map[uuid.UUID]bool, len(subs))
	for _, sub := range subs {
		if IsNewID(sub.ID) {
			if clubExtID == "" {
				state.warn(t.Name, sub.ID, "promotion skipped: tier has no remote club")
				continue
			}
			if err := s.createPromotion(ctx, provider, tenantID, t, sub.Discount, state); err != nil {
				return err
			}
			continue
		}

		id, err := uuid.Parse(sub.ID)
		if err != nil {
			state.warn(t.Name, sub.ID, "malformed promotion id")
			continue
		}
		submitted[id] = true
		record, ok := recordByID[id]
		if !ok {
			state.warn(t.Name, sub.ID, "unknown promotion id")
			continue
		}
		if err := s.syncExistingPromotion(ctx, provider, tenantID, t, record, sub.Discount, clubExtID, state); err != nil {
			return err
		}
	}

	// Persisted rows omitted from the submission are removed, remote
	// first, best effort.
	for _, r := range records {
		if submitted[r.ID] {
			continue
		}
		if r.IsSynced() {
			if err := provider.DeletePromotion(ctx, tenantID, r.ExternalPromotionID); err != nil && !errors.Is(err, crm.ErrNotFound) {
				s.logger.Warn("remote promotion delete failed",
					zap.String("tier", t.Name),
					zap.String("promotion_id", r.ExternalPromotionID),
					zap.Error(err))
				state.warn(t.Name, r.ID.String(), "remote promotion delete failed: "+err.Error())
			}
		}
		if err := s.promos.Delete(ctx, tenantID, r.ID); err != nil {
			return fmt.Errorf("delete promotion record: %w", err)
		}
	}
	return nil
}

func (s *SetupService) createPromotion(ctx context.Context, provider crm.CRMProvider, tenantID uuid.UUID, t *club.Tier, d promotion.Discount, state *setupState) error {
	record := club.NewTierPromotion(tenantID, t.ID, d.Title)

	clubExtID := ""
	if t.ExternalClubID != nil {
		clubExtID = *t.ExternalClubID
	}
	saved, err := provider.CreatePromotion(ctx, tenantID, &d, clubExtID)
	if err != nil {
		s.logger.Warn("promotion creation failed",
			zap.String("tier", t.Name),
			zap.String("title", d.Title),
			zap.Error(err))
		state.warn(t.Name, "", "promotion creation failed: "+err.Error())
	} else {
		record.SetExternal(saved.ExternalID, saved.Title)
	}

	// The row persists even when the remote call failed, so the next
	// setup run retries the creation instead of forgetting the row.
	if err := s.promos.Save(ctx, record); err != nil {
		return fmt.Errorf("save promotion record: %w", err)
	}
	return nil
}

// syncExistingPromotion probes the cached external id before updating.
// A remote NotFound means the object drifted away (deleted out-of-band);
// recovery is to recreate and re-cache the new id.
func (s *SetupService) syncExistingPromotion(ctx context.Context, provider crm.CRMProvider, tenantID uuid.UUID, t *club.Tier, record *club.TierPromotion, d promotion.Discount, clubExtID string, state *setupState) error {
	if !record.IsSynced() {
		// A previous run persisted the row but the remote create failed.
		saved, err := provider.CreatePromotion(ctx, tenantID, &d, clubExtID)
		if err != nil {
			state.warn(t.Name, record.ID.String(), "promotion creation failed: "+err.Error())
			return nil
		}
		record.SetExternal(saved.ExternalID, saved.Title)
		if err := s.promos.Save(ctx, record); err != nil {
			return fmt.Errorf("save promotion record: %w", err)
		}
		return nil
	}

	_, err := provider.GetPromotion(ctx, tenantID, record.ExternalPromotionID)
	switch {
	case errors.Is(err, crm.ErrNotFound):
		s.logger.Info("remote promotion drifted, recreating",
			zap.String("tier", t.Name),
			zap.String("promotion_id", record.ExternalPromotionID))
		saved, createErr := provider.CreatePromotion(ctx, tenantID, &d, clubExtID)
		if createErr != nil {
			state.warn(t.Name, record.ID.String(), "promotion recreation failed: "+createErr.Error())
			return nil
		}
		record.SetExternal(saved.ExternalID, saved.Title)
	case err != nil:
		state.warn(t.Name, record.ID.String(), "promotion probe failed: "+err.Error())
		return nil
	default:
		d.ExternalID = record.ExternalPromotionID
		saved, updateErr := provider.UpdatePromotion(ctx, tenantID, &d, clubExtID)
		if updateErr != nil {
			state.warn(t.Name, record.ID.String(), "promotion update failed: "+updateErr.Error())
			return nil
		}
		record.SetExternal(saved.ExternalID, saved.Title)
	}

	if err := s.promos.Save(ctx, record); err != nil {
		return fmt.Errorf("save promotion record: %w", err)
	}
	return nil
}

// removeTier deletes a persisted tier that was omitted from the
// submission. Remote cleanup is best effort; a tier whose remote club
// cannot be deleted is retired instead of removed so the reference is
// not lost.
func (s *SetupService) removeTier(ctx context.Context, provider crm.CRMProvider, tenantID uuid.UUID, t *club.Tier, state *setupState) error {
	records, err := s.promos.FindByTier(ctx, tenantID, t.ID)
	if err != nil {
		return fmt.Errorf("load promotions for tier %s: %w", t.Name, err)
	}
	for _, r := range records {
		if !r.IsSynced() {
			continue
		}
		if err := provider.DeletePromotion(ctx, tenantID, r.ExternalPromotionID); err != nil && !errors.Is(err, crm.ErrNotFound) {
			s.logger.Warn("remote promotion delete failed",
				zap.String("tier", t.Name),
				zap.String("promotion_id", r.ExternalPromotionID),
				zap.Error(err))
			state.warn(t.Name, r.ID.String(), "remote promotion delete failed: "+err.Error())
		}
	}
	if err := s.promos.DeleteByTier(ctx, tenantID, t.ID); err != nil {
		return fmt.Errorf("delete promotion records for tier %s: %w", t.Name, err)
	}

	if t.IsSynced() {
		if err := provider.DeleteClub(ctx, tenantID, *t.ExternalClubID); err != nil && !errors.Is(err, crm.ErrNotFound) {
			s.logger.Warn("remote club delete failed, retiring tier",
				zap.String("tier", t.Name), zap.Error(err))
			state.warn(t.Name, "", "remote club delete failed: "+err.Error())
			t.Retire()
			if err := s.tiers.Save(ctx, t); err != nil {
				return fmt.Errorf("retire tier %s: %w", t.Name, err)
			}
			state.deletedTierIDs = append(state.deletedTierIDs, t.ID)
			return nil
		}
	}

	if err := s.tiers.Delete(ctx, tenantID, t.ID); err != nil {
		return fmt.Errorf("delete tier %s: %w", t.Name, err)
	}
	state.deletedTierIDs = append(state.deletedTierIDs, t.ID)
	return nil
}

// =============================================================================
// Loyalty Step
// =============================================================================

// applyLoyalty runs last. Any failure here is fatal and triggers
// compensating deletes of remote objects created earlier in the call;
// compensation failures are logged and appended to warnings, the
// original error still propagates.
func (s *SetupService) applyLoyalty(ctx context.Context, provider crm.CRMProvider, tenantID uuid.UUID, sub *LoyaltySubmission, state *setupState) error {
	cfg, err := s.loyalty.FindForTenant(ctx, tenantID)
	if errors.Is(err, club.ErrNotFound) {
		cfg = club.NewLoyaltyConfig(tenantID)
	} else if err != nil {
		s.compensate(ctx, provider, tenantID, state)
		return &club.FatalSetupError{Step: "loyalty-rule", Cause: err}
	}

	for _, id := range state.deletedTierIDs {
		cfg.RemoveTier(id)
	}
	if sub != nil {
		cfg.Enabled = sub.Enabled
		cfg.WelcomeBonusPoints = sub.WelcomeBonusPoints
		cfg.PointsPerDollar = sub.PointsPerDollar
	}

	if cfg.Enabled {
		for _, t := range state.processed {
			if !t.IsSynced() {
				continue
			}
			if _, ok := cfg.TierLoyaltyIDs[t.ID]; ok {
				continue
			}
			extID, err := provider.CreateLoyaltyTier(ctx, tenantID, crm.LoyaltyTierCreate{
				Name:            t.Name,
				MinLTVCents:     t.MinLTVCents,
				PointsPerDollar: cfg.PointsPerDollar,
			})
			if err != nil {
				s.compensate(ctx, provider, tenantID, state)
				return &club.FatalSetupError{Step: "loyalty-tier", Cause: err}
			}
			cfg.SetTierLoyaltyID(t.ID, extID)
			state.createdLoyaltyTiers = append(state.createdLoyaltyTiers, extID)
		}
	}

	if err := s.loyalty.Save(ctx, cfg); err != nil {
		s.compensate(ctx, provider, tenantID, state)
		return &club.FatalSetupError{Step: "loyalty-rule", Cause: err}
	}
	return nil
}

// compensate best-effort deletes remote objects created in this call
func (s *SetupService) compensate(ctx context.Context, provider crm.CRMProvider, tenantID uuid.UUID, state *setupState) {
	for _, extID := range state.createdLoyaltyTiers {
		if err := provider.DeleteLoyaltyTier(ctx, tenantID, extID); err != nil && !errors.Is(err, crm.ErrNotFound) {
			s.logger.Error("loyalty tier compensation failed",
				zap.String("loyalty_tier_id", extID), zap.Error(err))
			state.warn("", "", "loyalty tier compensation failed: "+err.Error())
		}
	}
	for _, t := range state.createdClubs {
		if !t.IsSynced() {
			continue
		}
		if err := provider.DeleteClub(ctx, tenantID, *t.ExternalClubID); err != nil && !errors.Is(err, crm.ErrNotFound) {
			s.logger.Error("club compensation failed",
				zap.String("tier", t.Name), zap.Error(err))
			state.warn(t.Name, "", "club compensation failed: "+err.Error())
			continue
		}
		t.ExternalClubID = nil
		if err := s.tiers.Save(ctx, t); err != nil {
			s.logger.Error("failed to clear club reference after compensation",
				zap.String("tier", t.Name), zap.Error(err))
		}
	}
}

// =============================================================================
// Read Path
// =============================================================================

// ListTiers returns the tenant's tiers with promotion records enriched
// from the platform. Enrichment is tolerant: a failed remote fetch leaves
// the cached title and no detail.
func (s *SetupService) ListTiers(ctx context.Context, tenantID uuid.UUID, platform crm.PlatformCode) ([]TierView, error) {
	tiers, err := s.tiers.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	provider, err := s.factory.Provider(ctx, tenantID, platform)
	if err != nil {
		s.logger.Warn("provider unavailable, listing without detail", zap.Error(err))
		provider = nil
	}

	views := make([]TierView, 0, len(tiers))
	for _, t := range tiers {
		records, err := s.promos.FindByTier(ctx, tenantID, t.ID)
		if err != nil {
			return nil, err
		}
		if provider != nil {
			for _, r := range records {
				if !r.IsSynced() {
					continue
				}
				detail, err := provider.GetPromotion(ctx, tenantID, r.ExternalPromotionID)
				if err != nil {
					s.logger.Debug("promotion detail fetch failed",
						zap.String("promotion_id", r.ExternalPromotionID), zap.Error(err))
					continue
				}
				r.Detail = detail
			}
		}
		views = append(views, ToTierView(t, records))
	}
	return views, nil
}
