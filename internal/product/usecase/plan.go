package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

// desiredState is a validated payload resolved against the tenant's
// attributes, terms and categories, ready to be reconciled.
type desiredState struct {
	product      model.Product
	categoryIDs  []string
	assignments  []model.AttributeAssignment
	productTerms []model.ProductTerm
	variants     []desiredVariant
}

type desiredVariant struct {
	inputID   string
	variant   model.Variant
	terms     []model.VariantTerm
	stock     []model.StockRecord
	signature string
}

func (uc *productUseCase) plan(ctx context.Context, orgID, productID string, in *dto.ProductInput, now time.Time) (*desiredState, error) {
	if in == nil {
		return nil, apperr.Validation("product payload is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if !in.Type.Valid() {
		return nil, apperr.Validation("type must be %q or %q", model.ProductTypeSimple, model.ProductTypeVariable)
	}
	status := in.Status
	if status == "" {
		status = model.ProductStatusDraft
	}
	if !status.Valid() {
		return nil, apperr.Validation("unknown status %q", status)
	}

	want := &desiredState{
		product: model.Product{
			BaseModel:      model.BaseModel{ID: productID},
			OrganizationID: orgID,
			Name:           name,
			Description:    strings.TrimSpace(in.Description),
			Type:           in.Type,
			SKU:            trimmedPtr(in.SKU),
			Status:         status,
			ImageURL:       trimmedPtr(in.ImageURL),
		},
	}

	switch in.Type {
	case model.ProductTypeSimple:
		if in.Price == nil {
			return nil, apperr.Validation("price is required for simple products")
		}
		if problem := priceProblem(*in.Price); problem != "" {
			return nil, apperr.Validation("price %s", problem)
		}
		if len(in.Variations) > 0 {
			return nil, apperr.Validation("simple products do not take variations")
		}
		want.product.Price = decimal.NewNullDecimal(*in.Price)
	case model.ProductTypeVariable:
		if len(in.Variations) == 0 {
			return nil, apperr.Validation("variable products need at least one variation")
		}
		if len(in.Stock) > 0 {
			return nil, apperr.Validation("stock of a variable product is set per variation")
		}
	}

	if sku := want.product.SKU; sku != nil {
		if err := uc.ensureSKUFree(ctx, orgID, *sku, productID); err != nil {
			return nil, err
		}
	}

	categoryIDs, err := uc.resolveCategories(ctx, orgID, in.Categories)
	if err != nil {
		return nil, err
	}
	want.categoryIDs = categoryIDs

	res, err := uc.resolveAttributes(ctx, orgID, in)
	if err != nil {
		return nil, err
	}
	variable := in.Type == model.ProductTypeVariable

	for i, a := range in.Attributes {
		attr := res.attributes[a.AttributeID]
		want.assignments = append(want.assignments, model.AttributeAssignment{
			ProductID:        productID,
			AttributeID:      attr.ID,
			OrganizationID:   orgID,
			UsedForVariation: a.UsedForVariation,
			Position:         i,
		})
		seen := map[string]bool{}
		for _, termID := range a.Terms {
			termID = strings.TrimSpace(termID)
			t, ok := res.terms[termID]
			if !ok {
				return nil, apperr.Validation("term %s not found", termID)
			}
			if t.AttributeID != attr.ID {
				return nil, apperr.Validation("term %q does not belong to attribute %q", t.Name, attr.Name)
			}
			if seen[termID] {
				continue
			}
			seen[termID] = true
			if variable && a.UsedForVariation {
				continue
			}
			want.productTerms = append(want.productTerms, model.ProductTerm{
				ProductID:      productID,
				AttributeID:    attr.ID,
				TermID:         termID,
				OrganizationID: orgID,
			})
		}
	}

	if !variable {
		stock, err := inventory.NewRecords(orgID, "", in.Stock, now)
		if err != nil {
			return nil, err
		}
		want.variants = []desiredVariant{{
			variant: model.Variant{
				OrganizationID: orgID,
				SKU:            deref(want.product.SKU),
				Price:          *in.Price,
				ImageURL:       want.product.ImageURL,
			},
			stock: stock,
		}}
		return want, nil
	}

	variants, err := uc.planVariations(ctx, orgID, productID, in, res, now)
	if err != nil {
		return nil, err
	}
	want.variants = variants
	return want, nil
}

type resolvedAttributes struct {
	attributes map[string]model.Attribute
	terms      map[string]model.Term
	// variation attribute ids in payload order, and the terms each one allows
	variationOrder []string
	allowed        map[string]map[string]bool
}

func (uc *productUseCase) resolveAttributes(ctx context.Context, orgID string, in *dto.ProductInput) (*resolvedAttributes, error) {
	res := &resolvedAttributes{
		attributes: map[string]model.Attribute{},
		terms:      map[string]model.Term{},
		allowed:    map[string]map[string]bool{},
	}
	ids := make([]string, 0, len(in.Attributes))
	seen := map[string]bool{}
	for i := range in.Attributes {
		id := strings.TrimSpace(in.Attributes[i].AttributeID)
		if id == "" {
			return nil, apperr.Validation("attributeId is required")
		}
		if seen[id] {
			return nil, apperr.Validation("attribute %s is listed more than once", id)
		}
		seen[id] = true
		in.Attributes[i].AttributeID = id
		ids = append(ids, id)
	}
	if len(ids) > 0 {
		found, err := uc.attributes.FindAttributesByIDs(ctx, orgID, ids)
		if err != nil {
			return nil, uc.internal(err, "find attributes")
		}
		for _, a := range found {
			res.attributes[a.ID] = a
		}
		for _, id := range ids {
			if _, ok := res.attributes[id]; !ok {
				return nil, apperr.Validation("attribute %s not found", id)
			}
		}
	}

	termIDs := []string{}
	for _, a := range in.Attributes {
		termIDs = append(termIDs, a.Terms...)
	}
	for _, v := range in.Variations {
		termIDs = append(termIDs, v.Terms...)
	}
	termIDs = uniqueTrimmed(termIDs)
	if len(termIDs) > 0 {
		found, err := uc.attributes.FindTermsByIDs(ctx, orgID, termIDs)
		if err != nil {
			return nil, uc.internal(err, "find terms")
		}
		for _, t := range found {
			res.terms[t.ID] = t
		}
	}

	if in.Type == model.ProductTypeVariable {
		for _, a := range in.Attributes {
			if !a.UsedForVariation {
				continue
			}
			res.variationOrder = append(res.variationOrder, a.AttributeID)
			allowed := map[string]bool{}
			for _, termID := range a.Terms {
				allowed[strings.TrimSpace(termID)] = true
			}
			res.allowed[a.AttributeID] = allowed
		}
		if len(res.variationOrder) == 0 {
			return nil, apperr.Validation("variable products need an attribute used for variation")
		}
	}
	return res, nil
}

func (uc *productUseCase) planVariations(ctx context.Context, orgID, productID string, in *dto.ProductInput, res *resolvedAttributes, now time.Time) ([]desiredVariant, error) {
	out := make([]desiredVariant, 0, len(in.Variations))
	skus := map[string]bool{}
	combos := map[string]int{}
	ids := map[string]bool{}

	for i, v := range in.Variations {
		n := i + 1
		if problem := priceProblem(v.Price); problem != "" {
			return nil, apperr.Validation("variation %d: price %s", n, problem)
		}
		inputID := strings.TrimSpace(v.ID)
		if inputID != "" {
			if ids[inputID] {
				return nil, apperr.Validation("variation %d: id %s is repeated", n, inputID)
			}
			ids[inputID] = true
		}
		sku := strings.TrimSpace(v.SKU)
		if sku != "" {
			if skus[sku] {
				return nil, apperr.Validation("variation %d: sku %q is repeated", n, sku)
			}
			skus[sku] = true
			if err := uc.ensureSKUFree(ctx, orgID, sku, productID); err != nil {
				return nil, err
			}
		}

		byAttr := map[string]string{}
		for _, termID := range v.Terms {
			termID = strings.TrimSpace(termID)
			t, ok := res.terms[termID]
			if !ok {
				return nil, apperr.Validation("variation %d: term %s not found", n, termID)
			}
			allowed, isVariation := res.allowed[t.AttributeID]
			if !isVariation {
				return nil, apperr.Validation("variation %d: term %q is not on an attribute used for variation", n, t.Name)
			}
			if _, dup := byAttr[t.AttributeID]; dup {
				return nil, apperr.Validation("variation %d: more than one term for attribute %q", n, res.attributes[t.AttributeID].Name)
			}
			if len(allowed) > 0 && !allowed[termID] {
				return nil, apperr.Validation("variation %d: term %q is not listed for attribute %q", n, t.Name, res.attributes[t.AttributeID].Name)
			}
			byAttr[t.AttributeID] = termID
		}
		terms := make([]model.VariantTerm, 0, len(res.variationOrder))
		for _, attrID := range res.variationOrder {
			termID, ok := byAttr[attrID]
			if !ok {
				return nil, apperr.Validation("variation %d: missing a term for attribute %q", n, res.attributes[attrID].Name)
			}
			terms = append(terms, model.VariantTerm{
				AttributeID:    attrID,
				TermID:         termID,
				OrganizationID: orgID,
			})
		}
		sig := signature(terms)
		if prev, dup := combos[sig]; dup {
			return nil, apperr.Validation("variation %d repeats the terms of variation %d", n, prev)
		}
		combos[sig] = n

		stock, err := inventory.NewRecords(orgID, "", v.Stock, now)
		if err != nil {
			return nil, err
		}
		out = append(out, desiredVariant{
			inputID: inputID,
			variant: model.Variant{
				ProductID:      productID,
				OrganizationID: orgID,
				SKU:            sku,
				Price:          v.Price,
				ImageURL:       trimmedPtr(v.ImageURL),
				Position:       i,
			},
			terms:     terms,
			stock:     stock,
			signature: sig,
		})
	}
	return out, nil
}

func (uc *productUseCase) resolveCategories(ctx context.Context, orgID string, raw []string) ([]string, error) {
	ids := uniqueTrimmed(raw)
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := uc.categories.FindByIDs(ctx, orgID, ids)
	if err != nil {
		return nil, uc.internal(err, "find categories")
	}
	known := make(map[string]bool, len(found))
	for _, c := range found {
		known[c.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return nil, apperr.Validation("category %s not found", id)
		}
	}
	return ids, nil
}

func (uc *productUseCase) ensureSKUFree(ctx context.Context, orgID, sku, productID string) error {
	taken, err := uc.repo.IsSKUTaken(ctx, orgID, sku, productID)
	if err != nil {
		return uc.internal(err, "check sku")
	}
	if taken {
		return apperr.Validation("sku %q is already in use", sku)
	}
	return nil
}

// signature identifies a variation by its terms, independent of order.
// Prices are stored as NUMERIC(12,2).
const priceScale = 2

var priceLimit = decimal.New(1, 10)

// priceProblem describes why p cannot be stored exactly, or returns "".
func priceProblem(p decimal.Decimal) string {
	switch {
	case p.IsNegative():
		return "must not be negative"
	case !p.Equal(p.Round(priceScale)):
		return "must have at most 2 decimal places"
	case p.GreaterThanOrEqual(priceLimit):
		return "is too large"
	}
	return ""
}

func signature(terms []model.VariantTerm) string {
	if len(terms) == 0 {
		return ""
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, t.AttributeID+"="+t.TermID)
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

func uniqueTrimmed(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
