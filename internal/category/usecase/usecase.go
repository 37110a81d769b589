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
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/slugify"
)

type categoryUseCase struct {
	repo      category.Repository
	summaries cache.SummaryCache
	logger    logger.ZapLogger
	now       func() time.Time
}

// NewCategoryUseCase builds the category store. Product summaries embed
// category names, so renames and deletes invalidate them.
func NewCategoryUseCase(repo category.Repository, summaries cache.SummaryCache, log logger.ZapLogger) category.UseCase {
	if summaries == nil {
		summaries = cache.Nop{}
	}
	return &categoryUseCase{
		repo:      repo,
		summaries: summaries,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CategoryInput) (*model.Category, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	name, s, err := uc.nameAndSlug(input)
	if err != nil {
		return nil, err
	}
	parentID, err := uc.parent(ctx, orgID, input.ParentID)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureSlugFree(ctx, orgID, s, ""); err != nil {
		return nil, err
	}

	now := uc.now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID: orgID,
		ParentID:       parentID,
		Name:           name,
		Slug:           s,
		ImageURL:       blankToNil(input.Image),
	}
	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, uc.internal(err, "create category")
	}
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	return uc.find(ctx, orgID, id)
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := uc.repo.FindAll(ctx, orgID)
	if err != nil {
		return nil, uc.internal(err, "list categories")
	}
	if filters != nil && filters.Tree {
		return Tree(categories), nil
	}
	return Flatten(categories), nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, id string, input *dto.CategoryInput) (*model.Category, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := uc.find(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	name, s, err := uc.nameAndSlug(input)
	if err != nil {
		return nil, err
	}
	parentID, err := uc.parent(ctx, orgID, input.ParentID)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		all, err := uc.repo.FindAll(ctx, orgID)
		if err != nil {
			return nil, uc.internal(err, "list categories")
		}
		if createsCycle(all, cat.ID, *parentID) {
			return nil, apperr.Validation("category %q cannot be moved under its own descendant", cat.Name)
		}
	}
	if err := uc.ensureSlugFree(ctx, orgID, s, cat.ID); err != nil {
		return nil, err
	}

	cat.Name = name
	cat.Slug = s
	cat.ParentID = parentID
	cat.ImageURL = blankToNil(input.Image)
	cat.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, uc.internal(err, "update category")
	}
	uc.invalidate(ctx, orgID)
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return err
	}
	cat, err := uc.find(ctx, orgID, id)
	if err != nil {
		return err
	}
	hasChildren, err := uc.repo.HasChildren(ctx, orgID, cat.ID)
	if err != nil {
		return uc.internal(err, "check category children")
	}
	if hasChildren {
		return apperr.Validation("category %q has subcategories", cat.Name)
	}
	if err := uc.repo.Delete(ctx, orgID, cat.ID); err != nil {
		return uc.internal(err, "delete category")
	}
	uc.invalidate(ctx, orgID)
	return nil
}

func (uc *categoryUseCase) IsSlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return false, err
	}
	s, err := slugify.Resolve(slug, "")
	if err != nil {
		return false, err
	}
	taken, err := uc.repo.IsSlugTaken(ctx, orgID, s, excludeID)
	if err != nil {
		return false, uc.internal(err, "check category slug")
	}
	return taken, nil
}

func (uc *categoryUseCase) find(ctx context.Context, orgID, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, uc.internal(err, "find category")
	}
	if cat == nil {
		return nil, apperr.NotFound("category %s not found", id)
	}
	return cat, nil
}

// parent resolves the requested parent within the tenant. Empty means root.
func (uc *categoryUseCase) parent(ctx context.Context, orgID string, parentID *string) (*string, error) {
	if parentID == nil || strings.TrimSpace(*parentID) == "" {
		return nil, nil
	}
	id := strings.TrimSpace(*parentID)
	p, err := uc.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, uc.internal(err, "find parent category")
	}
	if p == nil {
		return nil, apperr.Validation("parent category %s not found", id)
	}
	return &p.ID, nil
}

func (uc *categoryUseCase) ensureSlugFree(ctx context.Context, orgID, s, excludeID string) error {
	taken, err := uc.repo.IsSlugTaken(ctx, orgID, s, excludeID)
	if err != nil {
		return uc.internal(err, "check category slug")
	}
	if taken {
		return apperr.Validation("slug %q already exists", s)
	}
	return nil
}

func (uc *categoryUseCase) nameAndSlug(input *dto.CategoryInput) (string, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", "", apperr.Validation("name is required")
	}
	s, err := slugify.Resolve(input.Slug, name)
	if err != nil {
		return "", "", err
	}
	return name, s, nil
}

func (uc *categoryUseCase) invalidate(ctx context.Context, orgID string) {
	if err := uc.summaries.Invalidate(ctx, orgID); err != nil {
		uc.logger.Warn("failed to invalidate product summaries", zap.String("organization_id", orgID), zap.Error(err))
	}
}

func (uc *categoryUseCase) internal(err error, op string) error {
	if !errors.Is(err, apperr.ErrValidation) {
		uc.logger.Error("category store failure", zap.String("op", op), zap.Error(err))
	}
	return apperr.Internal(err, op)
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
