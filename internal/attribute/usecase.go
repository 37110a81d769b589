package attribute

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/attribute/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type UseCase interface {
	CreateAttribute(ctx context.Context, input *dto.AttributeInput) (*model.Attribute, error)
	GetAttribute(ctx context.Context, id string) (*dto.AttributeDetail, error)
	ListAttributes(ctx context.Context) ([]model.Attribute, error)
	UpdateAttribute(ctx context.Context, id string, input *dto.AttributeInput) (*model.Attribute, error)
	DeleteAttribute(ctx context.Context, id string) error
	IsAttributeSlugTaken(ctx context.Context, slug, excludeID string) (bool, error)

	CreateTerm(ctx context.Context, attributeID string, input *dto.TermInput) (*model.Term, error)
	ListTerms(ctx context.Context, attributeID string) ([]model.Term, error)
	UpdateTerm(ctx context.Context, attributeID, termID string, input *dto.TermInput) (*model.Term, error)
	DeleteTerm(ctx context.Context, attributeID, termID string) error
	IsTermSlugTaken(ctx context.Context, attributeID, slug, excludeID string) (bool, error)
}
