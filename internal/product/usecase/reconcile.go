package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// currentState is what the store holds for one product before a write.
type currentState struct {
	categoryIDs  []string
	assignments  []model.AttributeAssignment
	productTerms []model.ProductTerm
	variants     []model.Variant
	variantTerms map[string][]model.VariantTerm
	stock        map[string][]model.StockRecord
}

func (uc *productUseCase) loadState(ctx context.Context, orgID, productID string) (*currentState, error) {
	cur := &currentState{
		variantTerms: map[string][]model.VariantTerm{},
		stock:        map[string][]model.StockRecord{},
	}
	assigned, err := uc.repo.ListCategoryAssignments(ctx, orgID, []string{productID})
	if err != nil {
		return nil, err
	}
	for _, a := range assigned {
		cur.categoryIDs = append(cur.categoryIDs, a.CategoryID)
	}
	if cur.assignments, err = uc.repo.ListAttributeAssignments(ctx, orgID, productID); err != nil {
		return nil, err
	}
	if cur.productTerms, err = uc.repo.ListProductTerms(ctx, orgID, productID); err != nil {
		return nil, err
	}
	if cur.variants, err = uc.repo.ListVariants(ctx, orgID, productID); err != nil {
		return nil, err
	}
	ids := variantIDs(cur.variants)
	if len(ids) == 0 {
		return cur, nil
	}
	terms, err := uc.repo.ListVariantTerms(ctx, orgID, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range terms {
		cur.variantTerms[t.VariantID] = append(cur.variantTerms[t.VariantID], t)
	}
	records, err := uc.stock.ListByVariantIDs(ctx, orgID, ids)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		cur.stock[rec.VariantID] = append(cur.stock[rec.VariantID], rec)
	}
	return cur, nil
}

// reconcile applies the difference between cur and want. Rows already in
// the desired state are left alone, so repeating a write changes nothing.
func (uc *productUseCase) reconcile(ctx context.Context, orgID, productID string, cur *currentState, want *desiredState, now time.Time) error {
	if err := uc.syncCategories(ctx, orgID, productID, cur.categoryIDs, want.categoryIDs); err != nil {
		return err
	}
	if err := uc.syncAssignments(ctx, orgID, productID, cur.assignments, want.assignments); err != nil {
		return err
	}
	if err := uc.syncProductTerms(ctx, orgID, productID, cur.productTerms, want.productTerms); err != nil {
		return err
	}
	return uc.syncVariants(ctx, orgID, productID, cur, want, now)
}

func (uc *productUseCase) syncCategories(ctx context.Context, orgID, productID string, have, want []string) error {
	remove, add := diffStrings(have, want)
	if len(remove) > 0 {
		if err := uc.repo.RemoveCategories(ctx, orgID, productID, remove); err != nil {
			return err
		}
	}
	if len(add) == 0 {
		return nil
	}
	rows := make([]model.CategoryAssignment, 0, len(add))
	for _, id := range add {
		rows = append(rows, model.CategoryAssignment{ProductID: productID, CategoryID: id, OrganizationID: orgID})
	}
	return uc.repo.AddCategories(ctx, rows)
}

func (uc *productUseCase) syncAssignments(ctx context.Context, orgID, productID string, have, want []model.AttributeAssignment) error {
	current := make(map[string]model.AttributeAssignment, len(have))
	for _, a := range have {
		current[a.AttributeID] = a
	}
	wanted := make(map[string]bool, len(want))
	for _, a := range want {
		wanted[a.AttributeID] = true
	}
	var remove []string
	for _, a := range have {
		if !wanted[a.AttributeID] {
			remove = append(remove, a.AttributeID)
		}
	}
	if len(remove) > 0 {
		if err := uc.repo.RemoveAttributeAssignments(ctx, orgID, productID, remove); err != nil {
			return err
		}
	}
	for i := range want {
		if old, ok := current[want[i].AttributeID]; ok &&
			old.UsedForVariation == want[i].UsedForVariation && old.Position == want[i].Position {
			continue
		}
		if err := uc.repo.SaveAttributeAssignment(ctx, &want[i]); err != nil {
			return err
		}
	}
	return nil
}

func (uc *productUseCase) syncProductTerms(ctx context.Context, orgID, productID string, have, want []model.ProductTerm) error {
	haveIDs := make([]string, 0, len(have))
	for _, t := range have {
		haveIDs = append(haveIDs, t.TermID)
	}
	wantIDs := make([]string, 0, len(want))
	byID := make(map[string]model.ProductTerm, len(want))
	for _, t := range want {
		wantIDs = append(wantIDs, t.TermID)
		byID[t.TermID] = t
	}
	remove, add := diffStrings(haveIDs, wantIDs)
	if len(remove) > 0 {
		if err := uc.repo.RemoveProductTerms(ctx, orgID, productID, remove); err != nil {
			return err
		}
	}
	if len(add) == 0 {
		return nil
	}
	rows := make([]model.ProductTerm, 0, len(add))
	for _, id := range add {
		rows = append(rows, byID[id])
	}
	return uc.repo.AddProductTerms(ctx, rows)
}

func (uc *productUseCase) syncVariants(ctx context.Context, orgID, productID string, cur *currentState, want *desiredState, now time.Time) error {
	matches := matchVariants(cur, want.variants, want.product.Type == model.ProductTypeSimple)

	existing := make(map[string]model.Variant, len(cur.variants))
	for _, v := range cur.variants {
		existing[v.ID] = v
	}
	kept := make(map[string]bool, len(matches))
	for _, id := range matches {
		if id != "" {
			kept[id] = true
		}
	}
	var removed []string
	for _, v := range cur.variants {
		if !kept[v.ID] {
			removed = append(removed, v.ID)
		}
	}
	// Children go first so no term or stock row outlives its variant.
	if len(removed) > 0 {
		if err := uc.repo.DeleteVariantTermsByVariantIDs(ctx, orgID, removed); err != nil {
			return err
		}
		if err := uc.stock.DeleteByVariantIDs(ctx, orgID, removed); err != nil {
			return err
		}
		if err := uc.repo.DeleteVariants(ctx, orgID, removed); err != nil {
			return err
		}
	}

	for i, dv := range want.variants {
		v := dv.variant
		v.ProductID = productID
		v.OrganizationID = orgID
		if id := matches[i]; id == "" {
			v.ID = uuid.New().String()
			v.CreatedAt = now
			v.UpdatedAt = now
			if err := uc.repo.CreateVariant(ctx, &v); err != nil {
				return err
			}
		} else {
			old := existing[id]
			v.ID = id
			v.CreatedAt = old.CreatedAt
			v.UpdatedAt = old.UpdatedAt
			if !sameVariant(old, v) {
				v.UpdatedAt = now
				if err := uc.repo.UpdateVariant(ctx, &v); err != nil {
					return err
				}
			}
		}
		if err := uc.syncVariantTerms(ctx, orgID, v.ID, cur.variantTerms[v.ID], dv.terms); err != nil {
			return err
		}
		if err := uc.syncStock(ctx, orgID, v.ID, cur.stock[v.ID], dv.stock); err != nil {
			return err
		}
	}
	return nil
}

func (uc *productUseCase) syncVariantTerms(ctx context.Context, orgID, variantID string, have, want []model.VariantTerm) error {
	current := make(map[string]string, len(have))
	for _, t := range have {
		current[t.AttributeID] = t.TermID
	}
	wanted := make(map[string]bool, len(want))
	for _, t := range want {
		wanted[t.AttributeID] = true
	}
	var remove []string
	for _, t := range have {
		if !wanted[t.AttributeID] {
			remove = append(remove, t.AttributeID)
		}
	}
	if len(remove) > 0 {
		if err := uc.repo.RemoveVariantTerms(ctx, orgID, variantID, remove); err != nil {
			return err
		}
	}
	for _, t := range want {
		if termID, ok := current[t.AttributeID]; ok && termID == t.TermID {
			continue
		}
		t.VariantID = variantID
		t.OrganizationID = orgID
		if err := uc.repo.SaveVariantTerm(ctx, &t); err != nil {
			return err
		}
	}
	return nil
}

func (uc *productUseCase) syncStock(ctx context.Context, orgID, variantID string, have, want []model.StockRecord) error {
	current := make(map[string]model.StockRecord, len(have))
	for _, rec := range have {
		current[rec.CountryCode] = rec
	}
	wanted := make(map[string]bool, len(want))
	for _, rec := range want {
		wanted[rec.CountryCode] = true
	}
	var remove []string
	for _, rec := range have {
		if !wanted[rec.CountryCode] {
			remove = append(remove, rec.CountryCode)
		}
	}
	if len(remove) > 0 {
		if err := uc.stock.DeleteCountries(ctx, orgID, variantID, remove); err != nil {
			return err
		}
	}
	for _, rec := range want {
		rec.VariantID = variantID
		rec.OrganizationID = orgID
		if old, ok := current[rec.CountryCode]; ok {
			if old.SameState(rec) {
				continue
			}
			rec.ID = old.ID
		}
		if err := uc.stock.Upsert(ctx, &rec); err != nil {
			return err
		}
	}
	return nil
}

// matchVariants pairs each desired variant with an existing variant id, or
// "" when it must be created. Candidates are tried by id, sku and term
// combination; a simple product also keeps its single variant.
func matchVariants(cur *currentState, want []desiredVariant, simple bool) []string {
	out := make([]string, len(want))
	taken := map[string]bool{}

	byID := map[string]bool{}
	bySKU := map[string]string{}
	bySig := map[string]string{}
	for _, v := range cur.variants {
		byID[v.ID] = true
		if v.SKU != "" {
			if _, dup := bySKU[v.SKU]; !dup {
				bySKU[v.SKU] = v.ID
			}
		}
		if sig := signature(cur.variantTerms[v.ID]); sig != "" {
			if _, dup := bySig[sig]; !dup {
				bySig[sig] = v.ID
			}
		}
	}
	assign := func(i int, id string) {
		if id == "" || out[i] != "" || taken[id] {
			return
		}
		out[i] = id
		taken[id] = true
	}
	for i, dv := range want {
		if byID[dv.inputID] {
			assign(i, dv.inputID)
		}
	}
	for i, dv := range want {
		if dv.variant.SKU != "" {
			assign(i, bySKU[dv.variant.SKU])
		}
	}
	for i, dv := range want {
		if dv.signature != "" {
			assign(i, bySig[dv.signature])
		}
	}
	if simple && len(want) == 1 && len(cur.variants) == 1 {
		assign(0, cur.variants[0].ID)
	}
	return out
}

func sameVariant(a, b model.Variant) bool {
	return a.SKU == b.SKU &&
		a.Price.Equal(b.Price) &&
		deref(a.ImageURL) == deref(b.ImageURL) &&
		a.Position == b.Position
}

// diffStrings returns the members of have missing from want, and the
// members of want missing from have.
func diffStrings(have, want []string) (remove, add []string) {
	inWant := make(map[string]bool, len(want))
	for _, s := range want {
		inWant[s] = true
	}
	inHave := make(map[string]bool, len(have))
	for _, s := range have {
		inHave[s] = true
		if !inWant[s] {
			remove = append(remove, s)
		}
	}
	for _, s := range want {
		if !inHave[s] {
			add = append(add, s)
		}
	}
	return remove, add
}

func variantIDs(variants []model.Variant) []string {
	ids := make([]string, 0, len(variants))
	for _, v := range variants {
		ids = append(ids, v.ID)
	}
	return ids
}
