package category

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, orgID, id string) (*model.Category, error)
	FindAll(ctx context.Context, orgID string) ([]model.Category, error)
	FindByIDs(ctx context.Context, orgID string, ids []string) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, orgID, id string) error
	IsSlugTaken(ctx context.Context, orgID, slug, excludeID string) (bool, error)
	HasChildren(ctx context.Context, orgID, id string) (bool, error)
}
