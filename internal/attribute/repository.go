package attribute

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	CreateAttribute(ctx context.Context, a *model.Attribute) error
	FindAttributeByID(ctx context.Context, orgID, id string) (*model.Attribute, error)
	FindAttributes(ctx context.Context, orgID string) ([]model.Attribute, error)
	FindAttributesByIDs(ctx context.Context, orgID string, ids []string) ([]model.Attribute, error)
	UpdateAttribute(ctx context.Context, a *model.Attribute) error
	DeleteAttribute(ctx context.Context, orgID, id string) error
	IsAttributeSlugTaken(ctx context.Context, orgID, slug, excludeID string) (bool, error)
	IsAttributeInUse(ctx context.Context, orgID, id string) (bool, error)

	CreateTerm(ctx context.Context, t *model.Term) error
	FindTermByID(ctx context.Context, orgID, id string) (*model.Term, error)
	FindTerms(ctx context.Context, orgID, attributeID string) ([]model.Term, error)
	FindTermsByIDs(ctx context.Context, orgID string, ids []string) ([]model.Term, error)
	UpdateTerm(ctx context.Context, t *model.Term) error
	DeleteTerm(ctx context.Context, orgID, id string) error
	IsTermSlugTaken(ctx context.Context, orgID, attributeID, slug, excludeID string) (bool, error)
	IsTermInUse(ctx context.Context, orgID, id string) (bool, error)
}
