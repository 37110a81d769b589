package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/database"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/metrics"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

// Deps are the collaborators of the product usecase. Cache, Publisher and
// Metrics may be left nil to disable them.
type Deps struct {
	Repo       product.Repository
	Stock      inventory.Repository
	Attributes product.AttributeLookup
	Categories product.CategoryLookup
	Tx         database.Transactor
	Cache      cache.SummaryCache
	Publisher  events.Publisher
	Metrics    metrics.SyncRecorder
	Logger     logger.ZapLogger
}

type productUseCase struct {
	repo       product.Repository
	stock      inventory.Repository
	attributes product.AttributeLookup
	categories product.CategoryLookup
	tx         database.Transactor
	cache      cache.SummaryCache
	publisher  events.Publisher
	metrics    metrics.SyncRecorder
	logger     logger.ZapLogger
	now        func() time.Time
}

func NewProductUseCase(d Deps) product.UseCase {
	uc := &productUseCase{
		repo:       d.Repo,
		stock:      d.Stock,
		attributes: d.Attributes,
		categories: d.Categories,
		tx:         d.Tx,
		cache:      d.Cache,
		publisher:  d.Publisher,
		metrics:    d.Metrics,
		logger:     d.Logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
	if uc.cache == nil {
		uc.cache = cache.Nop{}
	}
	if uc.publisher == nil {
		uc.publisher = events.Nop{}
	}
	if uc.metrics == nil {
		uc.metrics = metrics.Nop{}
	}
	if uc.logger == nil {
		uc.logger = logger.NewNop()
	}
	return uc
}

// CreateProduct persists a new product and everything it owns in one
// transaction. Nothing is written when any part of the payload is invalid.
func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.ProductInput) (*dto.ProductDetail, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	var detail *dto.ProductDetail
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := uc.now()
		want, err := uc.plan(ctx, orgID, id, input, now)
		if err != nil {
			return err
		}
		p := want.product
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := uc.repo.Create(ctx, &p); err != nil {
			return err
		}
		empty := &currentState{}
		if err := uc.reconcile(ctx, orgID, p.ID, empty, want, now); err != nil {
			return err
		}
		detail, err = uc.assemble(ctx, orgID, &p)
		return err
	})
	uc.metrics.ObserveSync("create", err)
	if err != nil {
		return nil, uc.fail(err, "create product", zap.String("organization_id", orgID))
	}

	uc.logger.Info("product created",
		zap.String("organization_id", orgID),
		zap.String("product_id", id),
		zap.Int("variants", len(detail.Variants)))
	uc.afterCommit(ctx, orgID, events.ProductCreated, id, detail)
	return detail, nil
}

// UpdateProduct makes the stored product match input exactly. Rows already
// in the desired state are kept; everything else is added, changed or removed.
func (uc *productUseCase) UpdateProduct(ctx context.Context, id string, input *dto.ProductInput) (*dto.ProductDetail, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}

	var detail *dto.ProductDetail
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := uc.find(ctx, orgID, id)
		if err != nil {
			return err
		}
		now := uc.now()
		want, err := uc.plan(ctx, orgID, existing.ID, input, now)
		if err != nil {
			return err
		}
		cur, err := uc.loadState(ctx, orgID, existing.ID)
		if err != nil {
			return err
		}

		p := want.product
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = existing.UpdatedAt
		if !sameProduct(existing, &p) {
			p.UpdatedAt = now
			if err := uc.repo.Update(ctx, &p); err != nil {
				return err
			}
		}
		if err := uc.reconcile(ctx, orgID, p.ID, cur, want, now); err != nil {
			return err
		}
		detail, err = uc.assemble(ctx, orgID, &p)
		return err
	})
	uc.metrics.ObserveSync("update", err)
	if err != nil {
		return nil, uc.fail(err, "update product", zap.String("organization_id", orgID), zap.String("product_id", id))
	}

	uc.logger.Info("product updated", zap.String("organization_id", orgID), zap.String("product_id", id))
	uc.afterCommit(ctx, orgID, events.ProductUpdated, id, detail)
	return detail, nil
}

// DeleteProduct removes the product and every row it owns. Attributes,
// terms and categories it referenced are untouched.
func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return err
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := uc.find(ctx, orgID, id)
		if err != nil {
			return err
		}
		variants, err := uc.repo.ListVariants(ctx, orgID, p.ID)
		if err != nil {
			return err
		}
		if ids := variantIDs(variants); len(ids) > 0 {
			if err := uc.repo.DeleteVariantTermsByVariantIDs(ctx, orgID, ids); err != nil {
				return err
			}
			if err := uc.stock.DeleteByVariantIDs(ctx, orgID, ids); err != nil {
				return err
			}
			if err := uc.repo.DeleteVariants(ctx, orgID, ids); err != nil {
				return err
			}
		}
		if err := uc.repo.DeleteAssociations(ctx, orgID, p.ID); err != nil {
			return err
		}
		return uc.repo.Delete(ctx, orgID, p.ID)
	})
	uc.metrics.ObserveSync("delete", err)
	if err != nil {
		return uc.fail(err, "delete product", zap.String("organization_id", orgID), zap.String("product_id", id))
	}

	uc.logger.Info("product deleted", zap.String("organization_id", orgID), zap.String("product_id", id))
	uc.afterCommit(ctx, orgID, events.ProductDeleted, id, map[string]string{"id": id})
	return nil
}

func (uc *productUseCase) IsSKUAvailable(ctx context.Context, sku, excludeID string) (bool, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return false, err
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return false, apperr.Validation("sku is required")
	}
	taken, err := uc.repo.IsSKUTaken(ctx, orgID, sku, strings.TrimSpace(excludeID))
	if err != nil {
		return false, uc.internal(err, "check sku")
	}
	return !taken, nil
}

func (uc *productUseCase) find(ctx context.Context, orgID, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, orgID, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product %s not found", id)
	}
	return p, nil
}

// afterCommit runs the side effects of a committed write. Their failures
// are logged only; the write itself has already succeeded.
func (uc *productUseCase) afterCommit(ctx context.Context, orgID, eventType, productID string, payload any) {
	if err := uc.cache.Invalidate(ctx, orgID); err != nil {
		uc.logger.Warn("failed to invalidate product summaries", zap.String("organization_id", orgID), zap.Error(err))
	}
	err := uc.publisher.Publish(ctx, events.Event{
		Type:           eventType,
		OrganizationID: orgID,
		EntityID:       productID,
		Payload:        payload,
	})
	if err != nil {
		uc.logger.Warn("failed to publish product event",
			zap.String("event_type", eventType),
			zap.String("product_id", productID),
			zap.Error(err))
	}
}

// fail maps err onto the error taxonomy and logs it at a level matching
// its class.
func (uc *productUseCase) fail(err error, op string, fields ...zap.Field) error {
	err = apperr.Internal(err, op)
	fields = append(fields, zap.String("op", op), zap.Error(err))
	if errors.Is(err, apperr.ErrInternal) {
		uc.logger.Error("product write failed", fields...)
	} else {
		uc.logger.Debug("product write rejected", fields...)
	}
	return err
}

func (uc *productUseCase) internal(err error, op string) error {
	if !errors.Is(err, apperr.ErrValidation) && !errors.Is(err, apperr.ErrNotFound) {
		uc.logger.Error("product store failure", zap.String("op", op), zap.Error(err))
	}
	return apperr.Internal(err, op)
}

func sameProduct(a, b *model.Product) bool {
	return a.Name == b.Name &&
		a.Description == b.Description &&
		a.Type == b.Type &&
		deref(a.SKU) == deref(b.SKU) &&
		a.Price.Valid == b.Price.Valid &&
		a.Price.Decimal.Equal(b.Price.Decimal) &&
		a.Status == b.Status &&
		deref(a.ImageURL) == deref(b.ImageURL)
}
