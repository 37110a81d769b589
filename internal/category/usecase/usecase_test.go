package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/testutil/memstore"
)

func setup(t *testing.T) (category.UseCase, context.Context) {
	t.Helper()
	s := memstore.New()
	return NewCategoryUseCase(s.Categories(), cache.Nop{}, logger.NewNop()), auth.WithOrganizationID(context.Background(), "org-1")
}

func create(t *testing.T, uc category.UseCase, ctx context.Context, name string, parent *model.Category) *model.Category {
	t.Helper()
	in := &dto.CategoryInput{Name: name}
	if parent != nil {
		in.ParentID = &parent.ID
	}
	c, err := uc.CreateCategory(ctx, in)
	require.NoError(t, err)
	return c
}

func TestCreateCategory(t *testing.T) {
	uc, ctx := setup(t)
	blank := " "

	root, err := uc.CreateCategory(ctx, &dto.CategoryInput{Name: "Home & Garden", Image: &blank})
	require.NoError(t, err)
	assert.Equal(t, "home-and-garden", root.Slug)
	assert.Nil(t, root.ParentID)
	assert.Nil(t, root.ImageURL)

	_, err = uc.CreateCategory(ctx, &dto.CategoryInput{Name: "Other", Slug: "home-and-garden"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	missing := "2b1f3c7e-8a1b-4c55-9d7e-0e4f2a6b9c10"
	_, err = uc.CreateCategory(ctx, &dto.CategoryInput{Name: "Orphan", ParentID: &missing})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	other := auth.WithOrganizationID(context.Background(), "org-2")
	_, err = uc.CreateCategory(other, &dto.CategoryInput{Name: "Child", ParentID: &root.ID})
	assert.ErrorIs(t, err, apperr.ErrValidation, "parents never cross tenants")
}

func TestListCategoriesFlattensWithLevels(t *testing.T) {
	uc, ctx := setup(t)
	clothing := create(t, uc, ctx, "Clothing", nil)
	shirts := create(t, uc, ctx, "Shirts", clothing)
	create(t, uc, ctx, "Polo", shirts)
	create(t, uc, ctx, "Accessories", nil)

	flat, err := uc.ListCategories(ctx, &dto.CategoryFilters{})
	require.NoError(t, err)

	got := make([]string, 0, len(flat))
	levels := make([]int, 0, len(flat))
	for _, c := range flat {
		got = append(got, c.Name)
		levels = append(levels, c.Level)
	}
	assert.Equal(t, []string{"Accessories", "Clothing", "Shirts", "Polo"}, got)
	assert.Equal(t, []int{0, 0, 1, 2}, levels)

	tree, err := uc.ListCategories(ctx, &dto.CategoryFilters{Tree: true})
	require.NoError(t, err)
	require.Len(t, tree, 2)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "Polo", tree[1].Children[0].Children[0].Name)
}

func TestUpdateCategoryRejectsCycles(t *testing.T) {
	uc, ctx := setup(t)
	a := create(t, uc, ctx, "A", nil)
	b := create(t, uc, ctx, "B", a)
	c := create(t, uc, ctx, "C", b)

	_, err := uc.UpdateCategory(ctx, a.ID, &dto.CategoryInput{Name: "A", ParentID: &c.ID})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = uc.UpdateCategory(ctx, a.ID, &dto.CategoryInput{Name: "A", ParentID: &a.ID})
	assert.ErrorIs(t, err, apperr.ErrValidation, "a category cannot parent itself")

	moved, err := uc.UpdateCategory(ctx, c.ID, &dto.CategoryInput{Name: "C", ParentID: &a.ID})
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, a.ID, *moved.ParentID)

	root, err := uc.UpdateCategory(ctx, b.ID, &dto.CategoryInput{Name: "B"})
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)
}

func TestDeleteCategoryWithChildrenIsRefused(t *testing.T) {
	uc, ctx := setup(t)
	parent := create(t, uc, ctx, "Parent", nil)
	child := create(t, uc, ctx, "Child", parent)

	assert.ErrorIs(t, uc.DeleteCategory(ctx, parent.ID), apperr.ErrValidation)

	require.NoError(t, uc.DeleteCategory(ctx, child.ID))
	require.NoError(t, uc.DeleteCategory(ctx, parent.ID))

	_, err := uc.GetCategory(ctx, parent.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, uc.DeleteCategory(ctx, parent.ID), apperr.ErrNotFound)
}

func TestCategorySlugCheck(t *testing.T) {
	uc, ctx := setup(t)
	c := create(t, uc, ctx, "Shoes", nil)

	taken, err := uc.IsSlugTaken(ctx, "Shoes", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = uc.IsSlugTaken(ctx, "shoes", c.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = uc.IsSlugTaken(context.Background(), "shoes", "")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestCategoryWritesInvalidateProductSummaries(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	summaries := cache.NewRedisSummaryCache(client, time.Minute)
	uc := NewCategoryUseCase(memstore.New().Categories(), summaries, logger.NewNop())
	ctx := auth.WithOrganizationID(context.Background(), "org-1")
	other := auth.WithOrganizationID(context.Background(), "org-2")
	key := cache.SummaryKey("org-1")

	c := create(t, uc, ctx, "Shoes", nil)
	require.NoError(t, summaries.Set(ctx, "org-1", []string{"cached"}))
	require.NoError(t, summaries.Set(other, "org-2", []string{"cached"}))

	_, err := uc.UpdateCategory(ctx, c.ID, &dto.CategoryInput{Name: "Footwear"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))
	assert.True(t, mr.Exists(cache.SummaryKey("org-2")), "other tenants keep their summaries")

	require.NoError(t, summaries.Set(ctx, "org-1", []string{"cached"}))
	_, err = uc.UpdateCategory(ctx, c.ID, &dto.CategoryInput{Name: "Footwear", ParentID: &c.ID})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.True(t, mr.Exists(key), "a rejected update leaves the cache alone")

	require.NoError(t, uc.DeleteCategory(ctx, c.ID))
	assert.False(t, mr.Exists(key))
}
