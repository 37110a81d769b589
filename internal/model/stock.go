package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SentinelMax is the persisted stock level standing for "not tracked".
const SentinelMax int64 = 2147483647

// Stock is either Unlimited or a managed, non-negative quantity.
// The zero value is Managed(0).
type Stock struct {
	unlimited bool
	qty       int64
}

func Managed(n int64) Stock {
	if n < 0 {
		n = 0
	}
	if n >= SentinelMax {
		n = SentinelMax - 1
	}
	return Stock{qty: n}
}

func Unlimited() Stock {
	return Stock{unlimited: true}
}

// StockFor applies the ledger rule: unmanaged stock is always Unlimited.
func StockFor(manageStock bool, level int64) Stock {
	if !manageStock {
		return Unlimited()
	}
	return Managed(level)
}

func (s Stock) IsUnlimited() bool { return s.unlimited }

// Quantity returns the managed quantity; ok is false for Unlimited.
func (s Stock) Quantity() (qty int64, ok bool) {
	if s.unlimited {
		return 0, false
	}
	return s.qty, true
}

// Level is the persisted and wire representation.
func (s Stock) Level() int64 {
	if s.unlimited {
		return SentinelMax
	}
	return s.qty
}

// Add sums two stocks. Unlimited absorbs any other value.
func (s Stock) Add(o Stock) Stock {
	if s.unlimited || o.unlimited {
		return Unlimited()
	}
	return Managed(s.qty + o.qty)
}

func (s Stock) String() string {
	if s.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", s.qty)
}

func (s Stock) Value() (driver.Value, error) {
	return s.Level(), nil
}

func (s *Stock) Scan(src any) error {
	var n int64
	switch v := src.(type) {
	case int64:
		n = v
	case int32:
		n = int64(v)
	case int:
		n = int64(v)
	case []byte:
		if _, err := fmt.Sscan(string(v), &n); err != nil {
			return fmt.Errorf("scan stock: %w", err)
		}
	case string:
		if _, err := fmt.Sscan(v, &n); err != nil {
			return fmt.Errorf("scan stock: %w", err)
		}
	case nil:
		n = 0
	default:
		return fmt.Errorf("scan stock: unsupported type %T", src)
	}
	if n >= SentinelMax {
		*s = Unlimited()
		return nil
	}
	*s = Managed(n)
	return nil
}

func (s Stock) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Level())
}

func (s *Stock) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if n >= SentinelMax {
		*s = Unlimited()
		return nil
	}
	*s = Managed(n)
	return nil
}

// StockRecord is the per-country stock state of one variant.
type StockRecord struct {
	ID             string    `db:"id" json:"id"`
	VariantID      string    `db:"variant_id" json:"variantId"`
	OrganizationID string    `db:"organization_id" json:"organizationId"`
	CountryCode    string    `db:"country_code" json:"countryCode"`
	StockLevel     Stock     `db:"stock_level" json:"stockLevel"`
	Visibility     bool      `db:"visibility" json:"visibility"`
	ManageStock    bool      `db:"manage_stock" json:"manageStock"`
	AllowBackorder bool      `db:"allow_backorder" json:"allowBackorder"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// SameState reports whether the mutable fields of two records match.
func (r StockRecord) SameState(o StockRecord) bool {
	return r.StockLevel == o.StockLevel &&
		r.Visibility == o.Visibility &&
		r.ManageStock == o.ManageStock &&
		r.AllowBackorder == o.AllowBackorder
}
