package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/cache"
	catdto "github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	catuc "github.com/fekuna/omnipos-catalog-service/internal/category/usecase"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/testutil/memstore"
)

const orgID = "org-1"

var errBoom = errors.New("boom")

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	store     *memstore.Store
	uc        product.UseCase
	publisher *recordingPublisher
}

func newFixture(t *testing.T, summaries cache.SummaryCache) *fixture {
	t.Helper()
	s := memstore.New()
	pub := &recordingPublisher{}
	uc := NewProductUseCase(Deps{
		Repo:       s.Products(),
		Stock:      s.Stock(),
		Attributes: s.Attributes(),
		Categories: s.Categories(),
		Tx:         s,
		Cache:      summaries,
		Publisher:  pub,
		Logger:     logger.NewNop(),
	})
	return &fixture{
		t:         t,
		ctx:       auth.WithOrganizationID(context.Background(), orgID),
		store:     s,
		uc:        uc,
		publisher: pub,
	}
}

func (f *fixture) attribute(name string) model.Attribute {
	f.t.Helper()
	a := model.Attribute{
		BaseModel:      model.BaseModel{ID: uuid.NewString(), CreatedAt: time.Now()},
		OrganizationID: orgID,
		Name:           name,
		Slug:           name,
	}
	require.NoError(f.t, f.store.Attributes().CreateAttribute(f.ctx, &a))
	return a
}

func (f *fixture) term(attributeID, name string) model.Term {
	f.t.Helper()
	t := model.Term{
		BaseModel:      model.BaseModel{ID: uuid.NewString(), CreatedAt: time.Now()},
		OrganizationID: orgID,
		AttributeID:    attributeID,
		Name:           name,
		Slug:           name,
	}
	require.NoError(f.t, f.store.Attributes().CreateTerm(f.ctx, &t))
	return t
}

func (f *fixture) category(name string) model.Category {
	f.t.Helper()
	c := model.Category{
		BaseModel:      model.BaseModel{ID: uuid.NewString(), CreatedAt: time.Now()},
		OrganizationID: orgID,
		Name:           name,
		Slug:           name,
	}
	require.NoError(f.t, f.store.Categories().Create(f.ctx, &c))
	return c
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mugInput() *dto.ProductInput {
	p := price("9.99")
	return &dto.ProductInput{
		Name:  "Mug",
		Type:  model.ProductTypeSimple,
		SKU:   strPtr("MUG-1"),
		Price: &p,
		Stock: []dto.StockInput{{CountryCode: "US", StockLevel: 5, ManageStock: boolPtr(true)}},
	}
}

// shirt is a variable product with one variation per color.
type shirt struct {
	color    model.Attribute
	red      model.Term
	blue     model.Term
	category model.Category
}

func (f *fixture) shirt() shirt {
	color := f.attribute("Color")
	return shirt{
		color:    color,
		red:      f.term(color.ID, "Red"),
		blue:     f.term(color.ID, "Blue"),
		category: f.category("Apparel"),
	}
}

func (s shirt) input() *dto.ProductInput {
	return &dto.ProductInput{
		Name:       "Shirt",
		Type:       model.ProductTypeVariable,
		Status:     model.ProductStatusPublished,
		Categories: []string{s.category.ID},
		Attributes: []dto.AttributeInput{{
			AttributeID:      s.color.ID,
			UsedForVariation: true,
			Terms:            []string{s.red.ID, s.blue.ID},
		}},
		Variations: []dto.VariationInput{
			{
				SKU:   "SHIRT-RED",
				Price: price("20"),
				Terms: []string{s.red.ID},
				Stock: []dto.StockInput{{CountryCode: "US", StockLevel: 3}},
			},
			{
				SKU:   "SHIRT-BLUE",
				Price: price("22"),
				Terms: []string{s.blue.ID},
				Stock: []dto.StockInput{
					{CountryCode: "US", StockLevel: 1},
					{CountryCode: "DE", StockLevel: 7},
				},
			},
		},
	}
}

func TestCreateSimpleProductMirrorsSingleVariant(t *testing.T) {
	f := newFixture(t, nil)

	created, err := f.uc.CreateProduct(f.ctx, mugInput())
	require.NoError(t, err)
	assert.Equal(t, model.ProductStatusDraft, created.Status)

	got, err := f.uc.GetProduct(f.ctx, dto.ProductLookup{ID: created.ID})
	require.NoError(t, err)
	require.Len(t, got.Variants, 1)

	v := got.Variants[0]
	assert.Equal(t, "MUG-1", v.SKU)
	assert.True(t, v.Price.Equal(got.Price.Decimal))
	require.Len(t, v.Stock, 1)
	assert.Equal(t, "US", v.Stock[0].CountryCode)
	assert.Equal(t, model.Managed(5), v.Stock[0].StockLevel)
	assert.Empty(t, v.Terms)
	assert.Equal(t, []string{events.ProductCreated}, f.publisher.types())
}

func TestCreateUnmanagedStockIsUnlimited(t *testing.T) {
	f := newFixture(t, nil)
	in := mugInput()
	in.Stock = []dto.StockInput{{CountryCode: "US", StockLevel: 5, ManageStock: boolPtr(false)}}

	created, err := f.uc.CreateProduct(f.ctx, in)
	require.NoError(t, err)

	stock := created.Variants[0].Stock
	require.Len(t, stock, 1)
	assert.True(t, stock[0].StockLevel.IsUnlimited())
	assert.Equal(t, model.SentinelMax, stock[0].StockLevel.Level())

	summaries, err := f.uc.ListProducts(f.ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].StockUnlimited)
	assert.Equal(t, model.SentinelMax, summaries[0].TotalStock)
	assert.True(t, summaries[0].VariableMinPrice.IsZero(), "simple products report no price range")
}

func TestCreateVariableProductRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	s := f.shirt()
	in := s.input()

	created, err := f.uc.CreateProduct(f.ctx, in)
	require.NoError(t, err)

	got, err := f.uc.GetProduct(f.ctx, dto.ProductLookup{ID: created.ID})
	require.NoError(t, err)
	assert.False(t, got.Price.Valid)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, s.category.ID, got.Categories[0].ID)

	require.Len(t, got.Attributes, 1)
	assert.True(t, got.Attributes[0].UsedForVariation)
	assert.ElementsMatch(t, []string{"Red", "Blue"}, termNames(got.Attributes[0].Terms))

	require.Len(t, got.Variants, len(in.Variations))
	for i, want := range in.Variations {
		v := got.Variants[i]
		assert.Equal(t, want.SKU, v.SKU)
		assert.True(t, want.Price.Equal(v.Price))
		require.Len(t, v.Terms, 1)
		assert.Equal(t, want.Terms[0], v.Terms[0].TermID)
		require.Len(t, v.Stock, len(want.Stock))
	}
	// Stock comes back ordered by country.
	assert.Equal(t, "DE", got.Variants[1].Stock[0].CountryCode)
	assert.Equal(t, model.Managed(7), got.Variants[1].Stock[0].StockLevel)
	assert.Equal(t, 0, f.store.Counts().ProductTerms, "variation terms live on variants")
}

func TestUpdateWithSamePayloadIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	s := f.shirt()

	created, err := f.uc.CreateProduct(f.ctx, s.input())
	require.NoError(t, err)

	first, err := f.uc.UpdateProduct(f.ctx, created.ID, s.input())
	require.NoError(t, err)
	counts := f.store.Counts()
	writes := f.store.Writes()

	second, err := f.uc.UpdateProduct(f.ctx, created.ID, s.input())
	require.NoError(t, err)

	assert.Equal(t, writes, f.store.Writes(), "an unchanged payload writes nothing")
	assert.Equal(t, counts, f.store.Counts())
	assert.Equal(t, variantIDs(first.Variants), variantIDs(second.Variants))
	assert.Equal(t, variantIDs(created.Variants), variantIDs(second.Variants), "matched variants keep their ids")
}

func TestUpdateRemovingVariationLeavesNoOrphans(t *testing.T) {
	f := newFixture(t, nil)
	s := f.shirt()

	created, err := f.uc.CreateProduct(f.ctx, s.input())
	require.NoError(t, err)
	removed := created.Variants[1].ID

	in := s.input()
	in.Variations = in.Variations[:1]
	updated, err := f.uc.UpdateProduct(f.ctx, created.ID, in)
	require.NoError(t, err)

	require.Len(t, updated.Variants, 1)
	assert.Equal(t, created.Variants[0].ID, updated.Variants[0].ID)
	assert.Empty(t, f.store.VariantTermsOf(removed))
	assert.Empty(t, f.store.StockOf(removed))
	assert.Len(t, f.store.VariantsOf(created.ID), 1)
	assert.Len(t, updated.Attributes[0].Terms, 1, "only terms in use are listed")
}

func TestUpdateReplacesStockAndCategories(t *testing.T) {
	f := newFixture(t, nil)
	s := f.shirt()
	other := f.category("Sale")

	created, err := f.uc.CreateProduct(f.ctx, s.input())
	require.NoError(t, err)

	in := s.input()
	in.Categories = []string{other.ID}
	in.Variations[1].Stock = []dto.StockInput{{CountryCode: "us", StockLevel: 9}}
	updated, err := f.uc.UpdateProduct(f.ctx, created.ID, in)
	require.NoError(t, err)

	require.Len(t, updated.Categories, 1)
	assert.Equal(t, other.ID, updated.Categories[0].ID)
	blue := updated.Variants[1]
	require.Len(t, blue.Stock, 1)
	assert.Equal(t, "US", blue.Stock[0].CountryCode)
	assert.Equal(t, model.Managed(9), blue.Stock[0].StockLevel)
	assert.Equal(t, created.Variants[1].Stock[1].ID, blue.Stock[0].ID, "the US row is updated in place")
}

func TestUpdateSimpleToVariable(t *testing.T) {
	f := newFixture(t, nil)
	s := f.shirt()

	created, err := f.uc.CreateProduct(f.ctx, mugInput())
	require.NoError(t, err)
	old := created.Variants[0].ID

	updated, err := f.uc.UpdateProduct(f.ctx, created.ID, s.input())
	require.NoError(t, err)

	assert.Equal(t, model.ProductTypeVariable, updated.Type)
	assert.Len(t, updated.Variants, 2)
	assert.Empty(t, f.store.StockOf(old))
	assert.Equal(t, 2, f.store.Counts().Variants)
}

func TestDeleteVariableProductKeepsSharedRows(t *testing.T) {
	f := newFixture(t, nil)
	s := f.shirt()

	created, err := f.uc.CreateProduct(f.ctx, s.input())
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteProduct(f.ctx, created.ID))

	counts := f.store.Counts()
	assert.Zero(t, counts.Products)
	assert.Zero(t, counts.Variants)
	assert.Zero(t, counts.VariantTerms)
	assert.Zero(t, counts.Stock)
	assert.Zero(t, counts.ProductCategories)
	assert.Zero(t, counts.ProductAttributes)
	assert.Equal(t, 1, counts.Attributes)
	assert.Equal(t, 2, counts.Terms)
	assert.Equal(t, 1, counts.Categories)

	_, err = f.uc.GetProduct(f.ctx, dto.ProductLookup{ID: created.ID})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, f.uc.DeleteProduct(f.ctx, created.ID), apperr.ErrNotFound)
}

func TestListProductsAggregatesVariablePrices(t *testing.T) {
	f := newFixture(t, nil)
	size := f.attribute("Size")
	var variations []dto.VariationInput
	for i, p := range []string{"10", "25", "25", "40"} {
		term := f.term(size.ID, []string{"S", "M", "L", "XL"}[i])
		variations = append(variations, dto.VariationInput{
			Price: price(p),
			Terms: []string{term.ID},
			Stock: []dto.StockInput{{CountryCode: "US", StockLevel: int64(i + 1)}},
		})
	}
	_, err := f.uc.CreateProduct(f.ctx, &dto.ProductInput{
		Name:       "Poster",
		Type:       model.ProductTypeVariable,
		Attributes: []dto.AttributeInput{{AttributeID: size.ID, UsedForVariation: true}},
		Variations: variations,
	})
	require.NoError(t, err)
	_, err = f.uc.CreateProduct(f.ctx, mugInput())
	require.NoError(t, err)

	summaries, err := f.uc.ListProducts(f.ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byName := map[string]dto.ProductSummary{}
	for _, s := range summaries {
		byName[s.Name] = s
	}
	poster := byName["Poster"]
	assert.Equal(t, 4, poster.VariantCount)
	assert.Equal(t, int64(10), poster.TotalStock)
	assert.False(t, poster.StockUnlimited)
	assert.True(t, poster.VariableMinPrice.Equal(price("10")))
	assert.True(t, poster.VariableMaxPrice.Equal(price("40")))

	mug := byName["Mug"]
	assert.Equal(t, int64(5), mug.TotalStock)
	assert.True(t, mug.VariableMaxPrice.IsZero())
	assert.NotNil(t, mug.Categories)
}

func TestGetProductBySKU(t *testing.T) {
	f := newFixture(t, nil)
	s := f.shirt()

	mug, err := f.uc.CreateProduct(f.ctx, mugInput())
	require.NoError(t, err)
	tee, err := f.uc.CreateProduct(f.ctx, s.input())
	require.NoError(t, err)

	got, err := f.uc.GetProduct(f.ctx, dto.ProductLookup{SKU: "MUG-1"})
	require.NoError(t, err)
	assert.Equal(t, mug.ID, got.ID)

	got, err = f.uc.GetProduct(f.ctx, dto.ProductLookup{SKU: "SHIRT-BLUE"})
	require.NoError(t, err)
	assert.Equal(t, tee.ID, got.ID, "a variant sku resolves to its product")

	_, err = f.uc.GetProduct(f.ctx, dto.ProductLookup{SKU: "NOPE"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.uc.GetProduct(f.ctx, dto.ProductLookup{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestTenantIsolation(t *testing.T) {
	f := newFixture(t, nil)
	created, err := f.uc.CreateProduct(f.ctx, mugInput())
	require.NoError(t, err)

	other := auth.WithOrganizationID(context.Background(), "org-2")
	_, err = f.uc.GetProduct(other, dto.ProductLookup{ID: created.ID})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.uc.UpdateProduct(other, created.ID, mugInput())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	summaries, err := f.uc.ListProducts(other)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	available, err := f.uc.IsSKUAvailable(other, "MUG-1", "")
	require.NoError(t, err)
	assert.True(t, available)
}

func TestMissingOrganizationIsUnauthorized(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.uc.CreateProduct(ctx, mugInput())
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = f.uc.UpdateProduct(ctx, "id", mugInput())
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.ErrorIs(t, f.uc.DeleteProduct(ctx, "id"), apperr.ErrUnauthorized)
	_, err = f.uc.GetProduct(ctx, dto.ProductLookup{ID: "id"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = f.uc.ListProducts(ctx)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestCreateRejectsInvalidPayloads(t *testing.T) {
	f := newFixture(t, nil)
	s := f.shirt()
	size := f.attribute("Size")
	small := f.term(size.ID, "S")
	_, err := f.uc.CreateProduct(f.ctx, mugInput())
	require.NoError(t, err)

	cases := map[string]func(in *dto.ProductInput){
		"blank name":          func(in *dto.ProductInput) { in.Name = "  " },
		"unknown type":        func(in *dto.ProductInput) { in.Type = "bundle" },
		"unknown status":      func(in *dto.ProductInput) { in.Status = "hidden" },
		"no variations":       func(in *dto.ProductInput) { in.Variations = nil },
		"unknown category":    func(in *dto.ProductInput) { in.Categories = []string{uuid.NewString()} },
		"unknown attribute":   func(in *dto.ProductInput) { in.Attributes[0].AttributeID = uuid.NewString() },
		"foreign term":        func(in *dto.ProductInput) { in.Attributes[0].Terms = []string{small.ID} },
		"duplicate attribute": func(in *dto.ProductInput) { in.Attributes = append(in.Attributes, in.Attributes[0]) },
		"no variation attribute": func(in *dto.ProductInput) {
			in.Attributes[0].UsedForVariation = false
		},
		"repeated combination": func(in *dto.ProductInput) { in.Variations[1].Terms = in.Variations[0].Terms },
		"missing term":         func(in *dto.ProductInput) { in.Variations[1].Terms = nil },
		"repeated sku":         func(in *dto.ProductInput) { in.Variations[1].SKU = in.Variations[0].SKU },
		"sku of another product": func(in *dto.ProductInput) {
			in.Variations[0].SKU = "MUG-1"
		},
		"negative price":    func(in *dto.ProductInput) { in.Variations[0].Price = price("-1") },
		"sub-cent price":    func(in *dto.ProductInput) { in.Variations[0].Price = price("9.999") },
		"oversized price":   func(in *dto.ProductInput) { in.Variations[0].Price = price("10000000000") },
		"top level stock":   func(in *dto.ProductInput) { in.Stock = []dto.StockInput{{CountryCode: "US"}} },
		"duplicate country": func(in *dto.ProductInput) { in.Variations[1].Stock[1].CountryCode = "us" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			before := f.store.Counts()
			in := s.input()
			mutate(in)
			_, err := f.uc.CreateProduct(f.ctx, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Equal(t, before, f.store.Counts())
		})
	}
}

func TestAttributeFromAnotherTenantIsRejected(t *testing.T) {
	f := newFixture(t, nil)
	s := f.shirt()
	otherCtx := auth.WithOrganizationID(context.Background(), "org-2")
	material := model.Attribute{
		BaseModel:      model.BaseModel{ID: uuid.NewString(), CreatedAt: time.Now()},
		OrganizationID: "org-2",
		Name:           "Material",
		Slug:           "material",
	}
	require.NoError(t, f.store.Attributes().CreateAttribute(otherCtx, &material))
	cotton := model.Term{
		BaseModel:      model.BaseModel{ID: uuid.NewString(), CreatedAt: time.Now()},
		OrganizationID: "org-2",
		AttributeID:    material.ID,
		Name:           "Cotton",
		Slug:           "cotton",
	}
	require.NoError(t, f.store.Attributes().CreateTerm(otherCtx, &cotton))

	withMaterial := func() *dto.ProductInput {
		in := s.input()
		in.Attributes = append(in.Attributes, dto.AttributeInput{
			AttributeID: material.ID,
			Terms:       []string{cotton.ID},
		})
		return in
	}

	before := f.store.Counts()
	_, err := f.uc.CreateProduct(f.ctx, withMaterial())
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, before, f.store.Counts())

	created, err := f.uc.CreateProduct(f.ctx, s.input())
	require.NoError(t, err)
	before = f.store.Counts()
	writes := f.store.Writes()

	_, err = f.uc.UpdateProduct(f.ctx, created.ID, withMaterial())
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, before, f.store.Counts())
	assert.Equal(t, writes, f.store.Writes())

	detail, err := f.uc.GetProduct(f.ctx, dto.ProductLookup{ID: created.ID})
	require.NoError(t, err)
	require.Len(t, detail.Attributes, 1)
	assert.Equal(t, s.color.ID, detail.Attributes[0].ID)
}

func TestCreateSimpleRequiresPrice(t *testing.T) {
	f := newFixture(t, nil)
	in := mugInput()
	in.Price = nil

	_, err := f.uc.CreateProduct(f.ctx, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSimplePriceMustFitStoredScale(t *testing.T) {
	f := newFixture(t, nil)
	in := mugInput()
	p := price("9.999")
	in.Price = &p

	_, err := f.uc.CreateProduct(f.ctx, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "2 decimal places")

	p = price("9.90")
	in.Price = &p
	created, err := f.uc.CreateProduct(f.ctx, in)
	require.NoError(t, err)
	assert.True(t, created.Price.Decimal.Equal(p))

	_, err = f.uc.UpdateProduct(f.ctx, created.ID, in)
	require.NoError(t, err)
	writes := f.store.Writes()
	_, err = f.uc.UpdateProduct(f.ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, writes, f.store.Writes(), "a repeated update writes nothing")
}

func TestCreateIsAtomic(t *testing.T) {
	f := newFixture(t, nil)
	s := f.shirt()
	before := f.store.Counts()
	f.store.FailOn("Upsert", errBoom)

	_, err := f.uc.CreateProduct(f.ctx, s.input())
	assert.ErrorIs(t, err, apperr.ErrInternal)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, before, f.store.Counts())
	assert.Empty(t, f.publisher.types(), "nothing is announced for a rolled back write")
}

func TestUpdateIsAtomic(t *testing.T) {
	f := newFixture(t, nil)
	s := f.shirt()
	created, err := f.uc.CreateProduct(f.ctx, s.input())
	require.NoError(t, err)
	before, err := f.uc.GetProduct(f.ctx, dto.ProductLookup{ID: created.ID})
	require.NoError(t, err)

	in := s.input()
	in.Name = "Renamed"
	in.Variations = in.Variations[:1]
	in.Variations[0].Stock = []dto.StockInput{{CountryCode: "FR", StockLevel: 2}}
	f.store.FailOn("Upsert", errBoom)

	_, err = f.uc.UpdateProduct(f.ctx, created.ID, in)
	assert.ErrorIs(t, err, apperr.ErrInternal)

	f.store.ClearFailures()
	after, err := f.uc.GetProduct(f.ctx, dto.ProductLookup{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, variantIDs(before.Variants), variantIDs(after.Variants))
	assert.Len(t, f.store.StockOf(created.Variants[1].ID), 2)
}

func TestWritesInvalidateSummaryCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f := newFixture(t, cache.NewRedisSummaryCache(client, time.Minute))

	_, err := f.uc.CreateProduct(f.ctx, mugInput())
	require.NoError(t, err)

	summaries, err := f.uc.ListProducts(f.ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, mr.Exists(cache.SummaryKey(orgID)))

	cached, err := f.uc.ListProducts(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, summaries[0].ID, cached[0].ID)

	require.NoError(t, f.uc.DeleteProduct(f.ctx, summaries[0].ID))
	assert.False(t, mr.Exists(cache.SummaryKey(orgID)))

	summaries, err = f.uc.ListProducts(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestCategoryRenameRefreshesSummaries(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	summaries := cache.NewRedisSummaryCache(client, time.Minute)
	f := newFixture(t, summaries)
	categories := catuc.NewCategoryUseCase(f.store.Categories(), summaries, logger.NewNop())
	s := f.shirt()

	created, err := f.uc.CreateProduct(f.ctx, s.input())
	require.NoError(t, err)
	list, err := f.uc.ListProducts(f.ctx)
	require.NoError(t, err)
	require.Len(t, list[0].Categories, 1)
	assert.Equal(t, "Apparel", list[0].Categories[0].Name)
	require.True(t, mr.Exists(cache.SummaryKey(orgID)))

	_, err = categories.UpdateCategory(f.ctx, s.category.ID, &catdto.CategoryInput{Name: "Clothing"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.SummaryKey(orgID)))

	list, err = f.uc.ListProducts(f.ctx)
	require.NoError(t, err)
	detail, err := f.uc.GetProduct(f.ctx, dto.ProductLookup{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "Clothing", list[0].Categories[0].Name)
	assert.Equal(t, "Clothing", detail.Categories[0].Name)
}

func TestIsSKUAvailable(t *testing.T) {
	f := newFixture(t, nil)
	created, err := f.uc.CreateProduct(f.ctx, mugInput())
	require.NoError(t, err)

	available, err := f.uc.IsSKUAvailable(f.ctx, "MUG-1", "")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = f.uc.IsSKUAvailable(f.ctx, "MUG-1", created.ID)
	require.NoError(t, err)
	assert.True(t, available, "a product never collides with itself")

	_, err = f.uc.IsSKUAvailable(f.ctx, " ", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestMatchVariantsPrefersIDThenSKUThenTerms(t *testing.T) {
	cur := &currentState{
		variants: []model.Variant{
			{BaseModel: model.BaseModel{ID: "a"}, SKU: "A"},
			{BaseModel: model.BaseModel{ID: "b"}, SKU: "B"},
			{BaseModel: model.BaseModel{ID: "c"}},
		},
		variantTerms: map[string][]model.VariantTerm{
			"c": {{VariantID: "c", AttributeID: "color", TermID: "red"}},
		},
	}
	want := []desiredVariant{
		{variant: model.Variant{SKU: "A"}},
		{inputID: "b"},
		{signature: "color=red"},
		{variant: model.Variant{SKU: "NEW"}},
	}

	assert.Equal(t, []string{"a", "b", "c", ""}, matchVariants(cur, want, false))
}

func TestMatchVariantsKeepsSimpleVariant(t *testing.T) {
	cur := &currentState{variants: []model.Variant{{BaseModel: model.BaseModel{ID: "only"}, SKU: "OLD"}}}
	want := []desiredVariant{{variant: model.Variant{SKU: "NEW"}}}

	assert.Equal(t, []string{"only"}, matchVariants(cur, want, true))
	assert.Equal(t, []string{""}, matchVariants(cur, want, false))
}

func TestDiffStrings(t *testing.T) {
	remove, add := diffStrings([]string{"a", "b", "c"}, []string{"b", "d"})
	assert.Equal(t, []string{"a", "c"}, remove)
	assert.Equal(t, []string{"d"}, add)
}

func termNames(terms []model.Term) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, t.Name)
	}
	return out
}
