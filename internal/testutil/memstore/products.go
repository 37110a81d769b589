package memstore

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
)

var (
	_ product.Repository      = (*ProductRepo)(nil)
	_ inventory.VariantLookup = (*ProductRepo)(nil)
)

var errDuplicateKey = errors.New("duplicate key")

type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("Create"); err != nil {
		return err
	}
	if err := r.uniqueSKU(p); err != nil {
		return err
	}
	stored := *p
	stored.Variants = nil
	r.s.d.products[p.ID] = stored
	return nil
}

func (r *ProductRepo) Update(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("Update"); err != nil {
		return err
	}
	if err := r.uniqueSKU(p); err != nil {
		return err
	}
	old, ok := r.s.d.products[p.ID]
	if !ok || old.OrganizationID != p.OrganizationID {
		return nil
	}
	stored := *p
	stored.Variants = nil
	r.s.d.products[p.ID] = stored
	return nil
}

// Delete fails while any owned row still references the product.
func (r *ProductRepo) Delete(_ context.Context, orgID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("Delete"); err != nil {
		return err
	}
	p, ok := r.s.d.products[id]
	if !ok || p.OrganizationID != orgID {
		return nil
	}
	for _, v := range r.s.d.variants {
		if v.ProductID == id {
			return errReferenced
		}
	}
	for _, pc := range r.s.d.productCategories {
		if pc.ProductID == id {
			return errReferenced
		}
	}
	for _, pa := range r.s.d.productAttributes {
		if pa.ProductID == id {
			return errReferenced
		}
	}
	for _, pt := range r.s.d.productTerms {
		if pt.ProductID == id {
			return errReferenced
		}
	}
	delete(r.s.d.products, id)
	return nil
}

func (r *ProductRepo) FindByID(_ context.Context, orgID, id string) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.d.products[id]
	if !ok || p.OrganizationID != orgID {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) FindBySKU(_ context.Context, orgID, sku string) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindBySKU"); err != nil {
		return nil, err
	}
	for _, p := range r.s.d.products {
		if p.OrganizationID == orgID && p.SKU != nil && *p.SKU == sku {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) FindAll(_ context.Context, orgID string) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindAll"); err != nil {
		return nil, err
	}
	var out []model.Product
	for _, p := range r.s.d.products {
		if p.OrganizationID == orgID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ProductRepo) IsSKUTaken(_ context.Context, orgID, sku, excludeProductID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("IsSKUTaken"); err != nil {
		return false, err
	}
	for _, p := range r.s.d.products {
		if p.OrganizationID == orgID && p.ID != excludeProductID && p.SKU != nil && *p.SKU == sku {
			return true, nil
		}
	}
	for _, v := range r.s.d.variants {
		if v.OrganizationID == orgID && v.ProductID != excludeProductID && v.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (r *ProductRepo) Aggregates(_ context.Context, orgID string) ([]model.ProductAggregate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("Aggregates"); err != nil {
		return nil, err
	}
	byProduct := map[string]*model.ProductAggregate{}
	for _, p := range r.s.d.products {
		if p.OrganizationID == orgID {
			byProduct[p.ID] = &model.ProductAggregate{ProductID: p.ID}
		}
	}
	for _, v := range r.s.d.variants {
		agg, ok := byProduct[v.ProductID]
		if !ok {
			continue
		}
		agg.VariantCount++
		if !agg.MinPrice.Valid || v.Price.LessThan(agg.MinPrice.Decimal) {
			agg.MinPrice = decimal.NewNullDecimal(v.Price)
		}
		if !agg.MaxPrice.Valid || v.Price.GreaterThan(agg.MaxPrice.Decimal) {
			agg.MaxPrice = decimal.NewNullDecimal(v.Price)
		}
		for _, rec := range r.s.d.stock {
			if rec.VariantID != v.ID {
				continue
			}
			if qty, managed := rec.StockLevel.Quantity(); managed && rec.ManageStock {
				agg.ManagedStock += qty
			} else {
				agg.HasUnlimited = true
			}
		}
	}
	out := make([]model.ProductAggregate, 0, len(byProduct))
	for _, agg := range byProduct {
		out = append(out, *agg)
	}
	return out, nil
}

func (r *ProductRepo) ListCategoryAssignments(_ context.Context, orgID string, productIDs []string) ([]model.CategoryAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("ListCategoryAssignments"); err != nil {
		return nil, err
	}
	return filter(r.s.d.productCategories, func(pc model.CategoryAssignment) bool {
		return pc.OrganizationID == orgID && contains(productIDs, pc.ProductID)
	}), nil
}

func (r *ProductRepo) AddCategories(_ context.Context, rows []model.CategoryAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("AddCategories"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, ok := r.s.d.categories[row.CategoryID]; !ok {
			return errors.New("memstore: assignment references a missing category")
		}
		for _, pc := range r.s.d.productCategories {
			if pc.ProductID == row.ProductID && pc.CategoryID == row.CategoryID {
				return errDuplicateKey
			}
		}
		r.s.d.productCategories = append(r.s.d.productCategories, row)
	}
	return nil
}

func (r *ProductRepo) RemoveCategories(_ context.Context, orgID, productID string, categoryIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("RemoveCategories"); err != nil {
		return err
	}
	r.s.d.productCategories = filter(r.s.d.productCategories, func(pc model.CategoryAssignment) bool {
		return !(pc.OrganizationID == orgID && pc.ProductID == productID && contains(categoryIDs, pc.CategoryID))
	})
	return nil
}

func (r *ProductRepo) ListAttributeAssignments(_ context.Context, orgID, productID string) ([]model.AttributeAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("ListAttributeAssignments"); err != nil {
		return nil, err
	}
	out := filter(r.s.d.productAttributes, func(pa model.AttributeAssignment) bool {
		return pa.OrganizationID == orgID && pa.ProductID == productID
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *ProductRepo) SaveAttributeAssignment(_ context.Context, a *model.AttributeAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("SaveAttributeAssignment"); err != nil {
		return err
	}
	if _, ok := r.s.d.attributes[a.AttributeID]; !ok {
		return errors.New("memstore: assignment references a missing attribute")
	}
	for i, pa := range r.s.d.productAttributes {
		if pa.ProductID == a.ProductID && pa.AttributeID == a.AttributeID {
			r.s.d.productAttributes[i] = *a
			return nil
		}
	}
	r.s.d.productAttributes = append(r.s.d.productAttributes, *a)
	return nil
}

func (r *ProductRepo) RemoveAttributeAssignments(_ context.Context, orgID, productID string, attributeIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("RemoveAttributeAssignments"); err != nil {
		return err
	}
	r.s.d.productAttributes = filter(r.s.d.productAttributes, func(pa model.AttributeAssignment) bool {
		return !(pa.OrganizationID == orgID && pa.ProductID == productID && contains(attributeIDs, pa.AttributeID))
	})
	return nil
}

func (r *ProductRepo) ListProductTerms(_ context.Context, orgID, productID string) ([]model.ProductTerm, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("ListProductTerms"); err != nil {
		return nil, err
	}
	return filter(r.s.d.productTerms, func(pt model.ProductTerm) bool {
		return pt.OrganizationID == orgID && pt.ProductID == productID
	}), nil
}

func (r *ProductRepo) AddProductTerms(_ context.Context, rows []model.ProductTerm) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("AddProductTerms"); err != nil {
		return err
	}
	for _, row := range rows {
		for _, pt := range r.s.d.productTerms {
			if pt.ProductID == row.ProductID && pt.TermID == row.TermID {
				return errDuplicateKey
			}
		}
		r.s.d.productTerms = append(r.s.d.productTerms, row)
	}
	return nil
}

func (r *ProductRepo) RemoveProductTerms(_ context.Context, orgID, productID string, termIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("RemoveProductTerms"); err != nil {
		return err
	}
	r.s.d.productTerms = filter(r.s.d.productTerms, func(pt model.ProductTerm) bool {
		return !(pt.OrganizationID == orgID && pt.ProductID == productID && contains(termIDs, pt.TermID))
	})
	return nil
}

func (r *ProductRepo) DeleteAssociations(_ context.Context, orgID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("DeleteAssociations"); err != nil {
		return err
	}
	r.s.d.productCategories = filter(r.s.d.productCategories, func(pc model.CategoryAssignment) bool {
		return !(pc.OrganizationID == orgID && pc.ProductID == productID)
	})
	r.s.d.productAttributes = filter(r.s.d.productAttributes, func(pa model.AttributeAssignment) bool {
		return !(pa.OrganizationID == orgID && pa.ProductID == productID)
	})
	r.s.d.productTerms = filter(r.s.d.productTerms, func(pt model.ProductTerm) bool {
		return !(pt.OrganizationID == orgID && pt.ProductID == productID)
	})
	return nil
}

func (r *ProductRepo) ListVariants(_ context.Context, orgID, productID string) ([]model.Variant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("ListVariants"); err != nil {
		return nil, err
	}
	var out []model.Variant
	for _, v := range r.s.d.variants {
		if v.OrganizationID == orgID && v.ProductID == productID {
			out = append(out, v)
		}
	}
	sortVariants(out)
	return out, nil
}

func (r *ProductRepo) FindVariantByID(_ context.Context, orgID, id string) (*model.Variant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindVariantByID"); err != nil {
		return nil, err
	}
	v, ok := r.s.d.variants[id]
	if !ok || v.OrganizationID != orgID {
		return nil, nil
	}
	return &v, nil
}

func (r *ProductRepo) FindVariantBySKU(_ context.Context, orgID, sku string) (*model.Variant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindVariantBySKU"); err != nil {
		return nil, err
	}
	var found []model.Variant
	for _, v := range r.s.d.variants {
		if v.OrganizationID == orgID && v.SKU == sku {
			found = append(found, v)
		}
	}
	if len(found) == 0 {
		return nil, nil
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.Before(found[j].CreatedAt) })
	return &found[0], nil
}

func (r *ProductRepo) CreateVariant(_ context.Context, v *model.Variant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("CreateVariant"); err != nil {
		return err
	}
	if _, ok := r.s.d.products[v.ProductID]; !ok {
		return errors.New("memstore: variant references a missing product")
	}
	if _, ok := r.s.d.variants[v.ID]; ok {
		return errDuplicateKey
	}
	r.s.d.variants[v.ID] = stripVariant(*v)
	return nil
}

func (r *ProductRepo) UpdateVariant(_ context.Context, v *model.Variant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("UpdateVariant"); err != nil {
		return err
	}
	if old, ok := r.s.d.variants[v.ID]; ok && old.OrganizationID == v.OrganizationID {
		r.s.d.variants[v.ID] = stripVariant(*v)
	}
	return nil
}

// DeleteVariants fails while terms or stock still reference a variant.
func (r *ProductRepo) DeleteVariants(_ context.Context, orgID string, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("DeleteVariants"); err != nil {
		return err
	}
	for _, vt := range r.s.d.variantTerms {
		if contains(ids, vt.VariantID) {
			return errReferenced
		}
	}
	for _, rec := range r.s.d.stock {
		if contains(ids, rec.VariantID) {
			return errReferenced
		}
	}
	for _, id := range ids {
		if v, ok := r.s.d.variants[id]; ok && v.OrganizationID == orgID {
			delete(r.s.d.variants, id)
		}
	}
	return nil
}

func (r *ProductRepo) ListVariantTerms(_ context.Context, orgID string, variantIDs []string) ([]model.VariantTerm, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("ListVariantTerms"); err != nil {
		return nil, err
	}
	return filter(r.s.d.variantTerms, func(vt model.VariantTerm) bool {
		return vt.OrganizationID == orgID && contains(variantIDs, vt.VariantID)
	}), nil
}

func (r *ProductRepo) SaveVariantTerm(_ context.Context, t *model.VariantTerm) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("SaveVariantTerm"); err != nil {
		return err
	}
	if _, ok := r.s.d.variants[t.VariantID]; !ok {
		return errors.New("memstore: variant term references a missing variant")
	}
	if _, ok := r.s.d.terms[t.TermID]; !ok {
		return errors.New("memstore: variant term references a missing term")
	}
	for i, vt := range r.s.d.variantTerms {
		if vt.VariantID == t.VariantID && vt.AttributeID == t.AttributeID {
			r.s.d.variantTerms[i] = *t
			return nil
		}
	}
	r.s.d.variantTerms = append(r.s.d.variantTerms, *t)
	return nil
}

func (r *ProductRepo) RemoveVariantTerms(_ context.Context, orgID, variantID string, attributeIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("RemoveVariantTerms"); err != nil {
		return err
	}
	r.s.d.variantTerms = filter(r.s.d.variantTerms, func(vt model.VariantTerm) bool {
		return !(vt.OrganizationID == orgID && vt.VariantID == variantID && contains(attributeIDs, vt.AttributeID))
	})
	return nil
}

func (r *ProductRepo) DeleteVariantTermsByVariantIDs(_ context.Context, orgID string, variantIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("DeleteVariantTermsByVariantIDs"); err != nil {
		return err
	}
	r.s.d.variantTerms = filter(r.s.d.variantTerms, func(vt model.VariantTerm) bool {
		return !(vt.OrganizationID == orgID && contains(variantIDs, vt.VariantID))
	})
	return nil
}

func (r *ProductRepo) uniqueSKU(p *model.Product) error {
	if p.SKU == nil {
		return nil
	}
	for _, other := range r.s.d.products {
		if other.ID != p.ID && other.OrganizationID == p.OrganizationID && other.SKU != nil && *other.SKU == *p.SKU {
			return apperr.Validation("sku %q is already in use", *p.SKU)
		}
	}
	return nil
}

func stripVariant(v model.Variant) model.Variant {
	v.Terms = nil
	v.Stock = nil
	return v
}

func sortVariants(vs []model.Variant) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].Position != vs[j].Position {
			return vs[i].Position < vs[j].Position
		}
		return vs[i].CreatedAt.Before(vs[j].CreatedAt)
	})
}
