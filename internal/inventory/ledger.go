package inventory

import (
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// NewRecord validates in and builds the row to upsert. Unmanaged stock is
// stored as Unlimited whatever level the caller sent.
func NewRecord(orgID, variantID string, in dto.StockLevelInput, now time.Time) (model.StockRecord, error) {
	country := NormalizeCountry(in.CountryCode)
	if country == "" {
		return model.StockRecord{}, apperr.Validation("countryCode is required")
	}
	manage := in.ManageStock == nil || *in.ManageStock
	if manage {
		if in.StockLevel < 0 {
			return model.StockRecord{}, apperr.Validation("stockLevel for %s must not be negative", country)
		}
		if in.StockLevel >= model.SentinelMax {
			return model.StockRecord{}, apperr.Validation("stockLevel for %s must be below %d", country, model.SentinelMax)
		}
	}
	return model.StockRecord{
		VariantID:      variantID,
		OrganizationID: orgID,
		CountryCode:    country,
		StockLevel:     model.StockFor(manage, in.StockLevel),
		Visibility:     in.Visibility == nil || *in.Visibility,
		ManageStock:    manage,
		AllowBackorder: in.AllowBackorder,
		UpdatedAt:      now,
	}, nil
}

// NewRecords builds one record per entry and rejects repeated countries.
func NewRecords(orgID, variantID string, in []dto.StockLevelInput, now time.Time) ([]model.StockRecord, error) {
	out := make([]model.StockRecord, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, entry := range in {
		rec, err := NewRecord(orgID, variantID, entry, now)
		if err != nil {
			return nil, err
		}
		if seen[rec.CountryCode] {
			return nil, apperr.Validation("duplicate stock entry for country %s", rec.CountryCode)
		}
		seen[rec.CountryCode] = true
		out = append(out, rec)
	}
	return out, nil
}

func NormalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
