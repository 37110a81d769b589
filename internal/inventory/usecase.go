package inventory

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type UseCase interface {
	UpsertStock(ctx context.Context, input *dto.StockInput) (*model.StockRecord, error)
	ListVariantStock(ctx context.Context, variantID string) ([]model.StockRecord, error)
}
