package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/attribute"
	"github.com/fekuna/omnipos-catalog-service/internal/attribute/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/slugify"
)

type attributeUseCase struct {
	repo   attribute.Repository
	logger logger.ZapLogger
	now    func() time.Time
}

func NewAttributeUseCase(repo attribute.Repository, log logger.ZapLogger) attribute.UseCase {
	return &attributeUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

func (uc *attributeUseCase) CreateAttribute(ctx context.Context, input *dto.AttributeInput) (*model.Attribute, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	name, s, err := uc.nameAndSlug(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	taken, err := uc.repo.IsAttributeSlugTaken(ctx, orgID, s, "")
	if err != nil {
		return nil, uc.internal(err, "check attribute slug")
	}
	if taken {
		return nil, apperr.Validation("slug %q already exists", s)
	}

	now := uc.now()
	a := &model.Attribute{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID: orgID,
		Name:           name,
		Slug:           s,
	}
	if err := uc.repo.CreateAttribute(ctx, a); err != nil {
		return nil, uc.internal(err, "create attribute")
	}
	return a, nil
}

func (uc *attributeUseCase) GetAttribute(ctx context.Context, id string) (*dto.AttributeDetail, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	a, err := uc.find(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	terms, err := uc.repo.FindTerms(ctx, orgID, a.ID)
	if err != nil {
		return nil, uc.internal(err, "list terms")
	}
	if terms == nil {
		terms = []model.Term{}
	}
	return &dto.AttributeDetail{Attribute: *a, Terms: terms}, nil
}

func (uc *attributeUseCase) ListAttributes(ctx context.Context) ([]model.Attribute, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	attributes, err := uc.repo.FindAttributes(ctx, orgID)
	if err != nil {
		return nil, uc.internal(err, "list attributes")
	}
	if attributes == nil {
		attributes = []model.Attribute{}
	}
	return attributes, nil
}

func (uc *attributeUseCase) UpdateAttribute(ctx context.Context, id string, input *dto.AttributeInput) (*model.Attribute, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	a, err := uc.find(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	name, s, err := uc.nameAndSlug(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	taken, err := uc.repo.IsAttributeSlugTaken(ctx, orgID, s, a.ID)
	if err != nil {
		return nil, uc.internal(err, "check attribute slug")
	}
	if taken {
		return nil, apperr.Validation("slug %q already exists", s)
	}

	a.Name = name
	a.Slug = s
	a.UpdatedAt = uc.now()
	if err := uc.repo.UpdateAttribute(ctx, a); err != nil {
		return nil, uc.internal(err, "update attribute")
	}
	return a, nil
}

func (uc *attributeUseCase) DeleteAttribute(ctx context.Context, id string) error {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return err
	}
	a, err := uc.find(ctx, orgID, id)
	if err != nil {
		return err
	}
	inUse, err := uc.repo.IsAttributeInUse(ctx, orgID, a.ID)
	if err != nil {
		return uc.internal(err, "check attribute usage")
	}
	if inUse {
		return apperr.Validation("attribute %q is assigned to products", a.Name)
	}
	if err := uc.repo.DeleteAttribute(ctx, orgID, a.ID); err != nil {
		return uc.internal(err, "delete attribute")
	}
	return nil
}

func (uc *attributeUseCase) IsAttributeSlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return false, err
	}
	s, err := slugify.Resolve(slug, "")
	if err != nil {
		return false, err
	}
	taken, err := uc.repo.IsAttributeSlugTaken(ctx, orgID, s, excludeID)
	if err != nil {
		return false, uc.internal(err, "check attribute slug")
	}
	return taken, nil
}

func (uc *attributeUseCase) CreateTerm(ctx context.Context, attributeID string, input *dto.TermInput) (*model.Term, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	a, err := uc.find(ctx, orgID, attributeID)
	if err != nil {
		return nil, err
	}
	name, s, err := uc.nameAndSlug(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	taken, err := uc.repo.IsTermSlugTaken(ctx, orgID, a.ID, s, "")
	if err != nil {
		return nil, uc.internal(err, "check term slug")
	}
	if taken {
		return nil, apperr.Validation("slug %q already exists for attribute %q", s, a.Name)
	}

	now := uc.now()
	t := &model.Term{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID: orgID,
		AttributeID:    a.ID,
		Name:           name,
		Slug:           s,
	}
	if err := uc.repo.CreateTerm(ctx, t); err != nil {
		return nil, uc.internal(err, "create term")
	}
	return t, nil
}

func (uc *attributeUseCase) ListTerms(ctx context.Context, attributeID string) ([]model.Term, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	a, err := uc.find(ctx, orgID, attributeID)
	if err != nil {
		return nil, err
	}
	terms, err := uc.repo.FindTerms(ctx, orgID, a.ID)
	if err != nil {
		return nil, uc.internal(err, "list terms")
	}
	if terms == nil {
		terms = []model.Term{}
	}
	return terms, nil
}

func (uc *attributeUseCase) UpdateTerm(ctx context.Context, attributeID, termID string, input *dto.TermInput) (*model.Term, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	t, err := uc.findTerm(ctx, orgID, attributeID, termID)
	if err != nil {
		return nil, err
	}
	name, s, err := uc.nameAndSlug(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	taken, err := uc.repo.IsTermSlugTaken(ctx, orgID, t.AttributeID, s, t.ID)
	if err != nil {
		return nil, uc.internal(err, "check term slug")
	}
	if taken {
		return nil, apperr.Validation("slug %q already exists", s)
	}

	t.Name = name
	t.Slug = s
	t.UpdatedAt = uc.now()
	if err := uc.repo.UpdateTerm(ctx, t); err != nil {
		return nil, uc.internal(err, "update term")
	}
	return t, nil
}

func (uc *attributeUseCase) DeleteTerm(ctx context.Context, attributeID, termID string) error {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return err
	}
	t, err := uc.findTerm(ctx, orgID, attributeID, termID)
	if err != nil {
		return err
	}
	inUse, err := uc.repo.IsTermInUse(ctx, orgID, t.ID)
	if err != nil {
		return uc.internal(err, "check term usage")
	}
	if inUse {
		return apperr.Validation("term %q is used by products", t.Name)
	}
	if err := uc.repo.DeleteTerm(ctx, orgID, t.ID); err != nil {
		return uc.internal(err, "delete term")
	}
	return nil
}

func (uc *attributeUseCase) IsTermSlugTaken(ctx context.Context, attributeID, slug, excludeID string) (bool, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return false, err
	}
	a, err := uc.find(ctx, orgID, attributeID)
	if err != nil {
		return false, err
	}
	s, err := slugify.Resolve(slug, "")
	if err != nil {
		return false, err
	}
	taken, err := uc.repo.IsTermSlugTaken(ctx, orgID, a.ID, s, excludeID)
	if err != nil {
		return false, uc.internal(err, "check term slug")
	}
	return taken, nil
}

func (uc *attributeUseCase) find(ctx context.Context, orgID, id string) (*model.Attribute, error) {
	a, err := uc.repo.FindAttributeByID(ctx, orgID, id)
	if err != nil {
		return nil, uc.internal(err, "find attribute")
	}
	if a == nil {
		return nil, apperr.NotFound("attribute %s not found", id)
	}
	return a, nil
}

func (uc *attributeUseCase) findTerm(ctx context.Context, orgID, attributeID, termID string) (*model.Term, error) {
	t, err := uc.repo.FindTermByID(ctx, orgID, termID)
	if err != nil {
		return nil, uc.internal(err, "find term")
	}
	if t == nil || t.AttributeID != attributeID {
		return nil, apperr.NotFound("term %s not found", termID)
	}
	return t, nil
}

func (uc *attributeUseCase) nameAndSlug(name, raw string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", apperr.Validation("name is required")
	}
	s, err := slugify.Resolve(raw, name)
	if err != nil {
		return "", "", err
	}
	return name, s, nil
}

func (uc *attributeUseCase) internal(err error, op string) error {
	if !errors.Is(err, apperr.ErrValidation) {
		uc.logger.Error("attribute store failure", zap.String("op", op), zap.Error(err))
	}
	return apperr.Internal(err, op)
}
