package memstore

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

var _ inventory.Repository = (*StockRepo)(nil)

type StockRepo struct{ s *Store }

// Upsert keeps at most one row per (variant, country).
func (r *StockRepo) Upsert(_ context.Context, rec *model.StockRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("Upsert"); err != nil {
		return err
	}
	if _, ok := r.s.d.variants[rec.VariantID]; !ok {
		return errors.New("memstore: stock references a missing variant")
	}
	if !rec.ManageStock {
		rec.StockLevel = model.Unlimited()
	}
	for id, old := range r.s.d.stock {
		if old.VariantID == rec.VariantID && old.CountryCode == rec.CountryCode {
			rec.ID = id
			r.s.d.stock[id] = *rec
			return nil
		}
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	r.s.d.stock[rec.ID] = *rec
	return nil
}

func (r *StockRepo) ListByVariantIDs(_ context.Context, orgID string, variantIDs []string) ([]model.StockRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("ListByVariantIDs"); err != nil {
		return nil, err
	}
	out := []model.StockRecord{}
	for _, rec := range r.s.d.stock {
		if rec.OrganizationID == orgID && contains(variantIDs, rec.VariantID) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VariantID != out[j].VariantID {
			return out[i].VariantID < out[j].VariantID
		}
		return out[i].CountryCode < out[j].CountryCode
	})
	return out, nil
}

func (r *StockRepo) DeleteByVariantIDs(_ context.Context, orgID string, variantIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("DeleteByVariantIDs"); err != nil {
		return err
	}
	for id, rec := range r.s.d.stock {
		if rec.OrganizationID == orgID && contains(variantIDs, rec.VariantID) {
			delete(r.s.d.stock, id)
		}
	}
	return nil
}

func (r *StockRepo) DeleteCountries(_ context.Context, orgID, variantID string, countryCodes []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("DeleteCountries"); err != nil {
		return err
	}
	for id, rec := range r.s.d.stock {
		if rec.OrganizationID == orgID && rec.VariantID == variantID && contains(countryCodes, rec.CountryCode) {
			delete(r.s.d.stock, id)
		}
	}
	return nil
}
