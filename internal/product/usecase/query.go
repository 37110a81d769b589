package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

// GetProduct returns the joined detail of one product, looked up by id or
// by sku. A sku carried only by a variant resolves to that variant's product.
func (uc *productUseCase) GetProduct(ctx context.Context, lookup dto.ProductLookup) (*dto.ProductDetail, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(lookup.ID)
	sku := strings.TrimSpace(lookup.SKU)
	if id == "" && sku == "" {
		return nil, apperr.Validation("id or sku is required")
	}

	var p *model.Product
	if id != "" {
		p, err = uc.repo.FindByID(ctx, orgID, id)
	} else {
		p, err = uc.findBySKU(ctx, orgID, sku)
	}
	if err != nil {
		return nil, uc.internal(err, "find product")
	}
	if p == nil {
		return nil, apperr.NotFound("product not found")
	}

	detail, err := uc.assemble(ctx, orgID, p)
	if err != nil {
		return nil, uc.internal(err, "assemble product")
	}
	return detail, nil
}

func (uc *productUseCase) findBySKU(ctx context.Context, orgID, sku string) (*model.Product, error) {
	p, err := uc.repo.FindBySKU(ctx, orgID, sku)
	if err != nil || p != nil {
		return p, err
	}
	v, err := uc.repo.FindVariantBySKU(ctx, orgID, sku)
	if err != nil || v == nil {
		return nil, err
	}
	return uc.repo.FindByID(ctx, orgID, v.ProductID)
}

// ListProducts summarizes every product of the tenant. Results are served
// from the summary cache when present.
func (uc *productUseCase) ListProducts(ctx context.Context) ([]dto.ProductSummary, error) {
	orgID, err := auth.OrganizationFrom(ctx)
	if err != nil {
		return nil, err
	}

	var cached []dto.ProductSummary
	hit, err := uc.cache.Get(ctx, orgID, &cached)
	if err != nil {
		uc.logger.Warn("failed to read product summaries from cache", zap.String("organization_id", orgID), zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	summaries, err := uc.summarize(ctx, orgID)
	if err != nil {
		return nil, uc.internal(err, "list products")
	}
	if err := uc.cache.Set(ctx, orgID, summaries); err != nil {
		uc.logger.Warn("failed to cache product summaries", zap.String("organization_id", orgID), zap.Error(err))
	}
	return summaries, nil
}

func (uc *productUseCase) summarize(ctx context.Context, orgID string) ([]dto.ProductSummary, error) {
	products, err := uc.repo.FindAll(ctx, orgID)
	if err != nil {
		return nil, err
	}
	summaries := make([]dto.ProductSummary, 0, len(products))
	if len(products) == 0 {
		return summaries, nil
	}

	aggregates, err := uc.repo.Aggregates(ctx, orgID)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[string]model.ProductAggregate, len(aggregates))
	for _, a := range aggregates {
		byProduct[a.ProductID] = a
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	categoriesOf, err := uc.categoriesFor(ctx, orgID, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range products {
		agg := byProduct[p.ID]
		s := dto.ProductSummary{
			Product:          p,
			Categories:       categoriesOf[p.ID],
			VariantCount:     agg.VariantCount,
			TotalStock:       agg.ManagedStock,
			VariableMinPrice: decimal.Zero,
			VariableMaxPrice: decimal.Zero,
		}
		if s.Categories == nil {
			s.Categories = []model.Category{}
		}
		// Unlimited stock is never summed as a quantity.
		if agg.HasUnlimited {
			s.StockUnlimited = true
			s.TotalStock = model.Unlimited().Level()
		}
		if p.Type == model.ProductTypeVariable && agg.MinPrice.Valid && agg.MaxPrice.Valid {
			s.VariableMinPrice = agg.MinPrice.Decimal
			s.VariableMaxPrice = agg.MaxPrice.Decimal
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// categoriesFor resolves category assignments of many products with one
// bulk read of each table.
func (uc *productUseCase) categoriesFor(ctx context.Context, orgID string, productIDs []string) (map[string][]model.Category, error) {
	assigned, err := uc.repo.ListCategoryAssignments(ctx, orgID, productIDs)
	if err != nil {
		return nil, err
	}
	if len(assigned) == 0 {
		return map[string][]model.Category{}, nil
	}
	ids := make([]string, 0, len(assigned))
	for _, a := range assigned {
		ids = append(ids, a.CategoryID)
	}
	found, err := uc.categories.FindByIDs(ctx, orgID, uniqueTrimmed(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Category, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	out := make(map[string][]model.Category, len(productIDs))
	for _, a := range assigned {
		if c, ok := byID[a.CategoryID]; ok {
			out[a.ProductID] = append(out[a.ProductID], c)
		}
	}
	for id := range out {
		sort.SliceStable(out[id], func(i, j int) bool { return out[id][i].Name < out[id][j].Name })
	}
	return out, nil
}

// assemble joins a product with its categories, attributes, terms,
// variants and stock.
func (uc *productUseCase) assemble(ctx context.Context, orgID string, p *model.Product) (*dto.ProductDetail, error) {
	categoriesOf, err := uc.categoriesFor(ctx, orgID, []string{p.ID})
	if err != nil {
		return nil, err
	}
	assignments, err := uc.repo.ListAttributeAssignments(ctx, orgID, p.ID)
	if err != nil {
		return nil, err
	}
	productTerms, err := uc.repo.ListProductTerms(ctx, orgID, p.ID)
	if err != nil {
		return nil, err
	}
	variants, err := uc.repo.ListVariants(ctx, orgID, p.ID)
	if err != nil {
		return nil, err
	}
	ids := variantIDs(variants)
	var variantTerms []model.VariantTerm
	var records []model.StockRecord
	if len(ids) > 0 {
		if variantTerms, err = uc.repo.ListVariantTerms(ctx, orgID, ids); err != nil {
			return nil, err
		}
		if records, err = uc.stock.ListByVariantIDs(ctx, orgID, ids); err != nil {
			return nil, err
		}
	}

	attrIDs := make([]string, 0, len(assignments))
	position := make(map[string]int, len(assignments))
	for _, a := range assignments {
		attrIDs = append(attrIDs, a.AttributeID)
		position[a.AttributeID] = a.Position
	}
	attrs, err := uc.attributes.FindAttributesByIDs(ctx, orgID, attrIDs)
	if err != nil {
		return nil, err
	}
	attrByID := make(map[string]model.Attribute, len(attrs))
	for _, a := range attrs {
		attrByID[a.ID] = a
	}

	termIDs := make([]string, 0, len(productTerms)+len(variantTerms))
	for _, t := range productTerms {
		termIDs = append(termIDs, t.TermID)
	}
	for _, t := range variantTerms {
		termIDs = append(termIDs, t.TermID)
	}
	terms, err := uc.attributes.FindTermsByIDs(ctx, orgID, uniqueTrimmed(termIDs))
	if err != nil {
		return nil, err
	}
	termByID := make(map[string]model.Term, len(terms))
	for _, t := range terms {
		termByID[t.ID] = t
	}

	termsOf := make(map[string][]model.VariantTerm, len(ids))
	for _, t := range variantTerms {
		termsOf[t.VariantID] = append(termsOf[t.VariantID], t)
	}
	stockOf := make(map[string][]model.StockRecord, len(ids))
	for _, rec := range records {
		stockOf[rec.VariantID] = append(stockOf[rec.VariantID], rec)
	}
	for i := range variants {
		vt := termsOf[variants[i].ID]
		sort.SliceStable(vt, func(a, b int) bool { return position[vt[a].AttributeID] < position[vt[b].AttributeID] })
		st := stockOf[variants[i].ID]
		sort.SliceStable(st, func(a, b int) bool { return st[a].CountryCode < st[b].CountryCode })
		if vt == nil {
			vt = []model.VariantTerm{}
		}
		if st == nil {
			st = []model.StockRecord{}
		}
		variants[i].Terms = vt
		variants[i].Stock = st
	}

	variable := p.Type == model.ProductTypeVariable
	details := make([]dto.AttributeDetail, 0, len(assignments))
	for _, a := range assignments {
		attr, ok := attrByID[a.AttributeID]
		if !ok {
			continue
		}
		var resolved []model.Term
		seen := map[string]bool{}
		if variable && a.UsedForVariation {
			// Variation attributes list the terms their variants actually use.
			for _, v := range variants {
				for _, t := range v.Terms {
					if t.AttributeID == a.AttributeID && !seen[t.TermID] {
						seen[t.TermID] = true
						if term, ok := termByID[t.TermID]; ok {
							resolved = append(resolved, term)
						}
					}
				}
			}
		} else {
			for _, t := range productTerms {
				if t.AttributeID == a.AttributeID && !seen[t.TermID] {
					seen[t.TermID] = true
					if term, ok := termByID[t.TermID]; ok {
						resolved = append(resolved, term)
					}
				}
			}
			sort.SliceStable(resolved, func(i, j int) bool { return resolved[i].Name < resolved[j].Name })
		}
		if resolved == nil {
			resolved = []model.Term{}
		}
		details = append(details, dto.AttributeDetail{
			Attribute:        attr,
			UsedForVariation: a.UsedForVariation,
			Terms:            resolved,
		})
	}

	out := *p
	out.Variants = variants
	categories := categoriesOf[p.ID]
	if categories == nil {
		categories = []model.Category{}
	}
	return &dto.ProductDetail{
		Product:    out,
		Categories: categories,
		Attributes: details,
	}, nil
}
