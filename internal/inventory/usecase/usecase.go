package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type inventoryUseCase struct {
	repo      inventory.Repository
	variants  inventory.VariantLookup
	cache     cache.SummaryCache
	publisher events.Publisher
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewInventoryUseCase(
	repo inventory.Repository,
	variants inventory.VariantLookup,
	summaries cache.SummaryCache,
	publisher events.Publisher,
	log logger.ZapLogger,
) inventory.UseCase {
	return &inventoryUseCase{
		repo:      repo,
		variants:  variants,
		cache:     summaries,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// UpsertStock replaces one country's stock row for a variant.
func (uc *inventoryUseCase) UpsertStock(ctx context.Context, input *dto.StockInput) (*model.StockRecord, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	v, err := uc.variant(ctx, orgID, input.VariantID)
	if err != nil {
		return nil, err
	}
	rec, err := inventory.NewRecord(orgID, v.ID, input.StockLevelInput, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Upsert(ctx, &rec); err != nil {
		uc.logger.Error("failed to upsert stock",
			zap.String("organization_id", orgID),
			zap.String("variant_id", v.ID),
			zap.String("country_code", rec.CountryCode),
			zap.Error(err))
		return nil, apperr.Internal(err, "upsert stock")
	}

	if err := uc.cache.Invalidate(ctx, orgID); err != nil {
		uc.logger.Warn("failed to invalidate product summaries", zap.String("organization_id", orgID), zap.Error(err))
	}
	if err := uc.publisher.Publish(ctx, events.Event{
		Type:           events.StockUpserted,
		OrganizationID: orgID,
		EntityID:       rec.ID,
		Payload:        rec,
	}); err != nil {
		uc.logger.Warn("failed to publish stock event", zap.String("variant_id", v.ID), zap.Error(err))
	}
	return &rec, nil
}

func (uc *inventoryUseCase) ListVariantStock(ctx context.Context, variantID string) ([]model.StockRecord, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	v, err := uc.variant(ctx, orgID, variantID)
	if err != nil {
		return nil, err
	}
	records, err := uc.repo.ListByVariantIDs(ctx, orgID, []string{v.ID})
	if err != nil {
		uc.logger.Error("failed to list stock", zap.String("variant_id", v.ID), zap.Error(err))
		return nil, apperr.Internal(err, "list stock")
	}
	if records == nil {
		records = []model.StockRecord{}
	}
	return records, nil
}

func (uc *inventoryUseCase) variant(ctx context.Context, orgID, id string) (*model.Variant, error) {
	v, err := uc.variants.FindVariantByID(ctx, orgID, id)
	if err != nil {
		uc.logger.Error("failed to find variant", zap.String("variant_id", id), zap.Error(err))
		return nil, apperr.Internal(err, "find variant")
	}
	if v == nil {
		return nil, apperr.NotFound("variant %s not found", id)
	}
	return v, nil
}
