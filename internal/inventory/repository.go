package inventory

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	// Upsert writes the row keyed by (variant, country). On return rec.ID
	// holds the id of the row that was inserted or updated.
	Upsert(ctx context.Context, rec *model.StockRecord) error
	ListByVariantIDs(ctx context.Context, orgID string, variantIDs []string) ([]model.StockRecord, error)
	DeleteByVariantIDs(ctx context.Context, orgID string, variantIDs []string) error
	DeleteCountries(ctx context.Context, orgID, variantID string, countryCodes []string) error
}

// VariantLookup resolves a variant inside a tenant.
type VariantLookup interface {
	FindVariantByID(ctx context.Context, orgID, id string) (*model.Variant, error)
}
