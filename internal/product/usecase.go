package product

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.ProductInput) (*dto.ProductDetail, error)
	UpdateProduct(ctx context.Context, id string, input *dto.ProductInput) (*dto.ProductDetail, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, lookup dto.ProductLookup) (*dto.ProductDetail, error)
	ListProducts(ctx context.Context) ([]dto.ProductSummary, error)
	IsSKUAvailable(ctx context.Context, sku, excludeID string) (bool, error)
}

