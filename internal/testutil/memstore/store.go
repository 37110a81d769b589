// Package memstore is an in-memory implementation of every catalog
// repository port, for usecase tests. WithinTx restores a snapshot when its
// function fails, and FailOn injects errors into single operations.
//
// Deleting a row that children still reference is an error here, where
// Postgres would cascade, so tests notice an out-of-order teardown.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Store struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	d        data
	failures map[string]error
	writes   int
}

type data struct {
	attributes        map[string]model.Attribute
	terms             map[string]model.Term
	categories        map[string]model.Category
	products          map[string]model.Product
	productCategories []model.CategoryAssignment
	productAttributes []model.AttributeAssignment
	productTerms      []model.ProductTerm
	variants          map[string]model.Variant
	variantTerms      []model.VariantTerm
	stock             map[string]model.StockRecord
}

func New() *Store {
	return &Store{
		d: data{
			attributes: map[string]model.Attribute{},
			terms:      map[string]model.Term{},
			categories: map[string]model.Category{},
			products:   map[string]model.Product{},
			variants:   map[string]model.Variant{},
			stock:      map[string]model.StockRecord{},
		},
		failures: map[string]error{},
	}
}

func (d data) clone() data {
	return data{
		attributes:        cloneMap(d.attributes),
		terms:             cloneMap(d.terms),
		categories:        cloneMap(d.categories),
		products:          cloneMap(d.products),
		productCategories: append([]model.CategoryAssignment(nil), d.productCategories...),
		productAttributes: append([]model.AttributeAssignment(nil), d.productAttributes...),
		productTerms:      append([]model.ProductTerm(nil), d.productTerms...),
		variants:          cloneMap(d.variants),
		variantTerms:      append([]model.VariantTerm(nil), d.variantTerms...),
		stock:             cloneMap(d.stock),
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type txKey struct{}

// WithinTx serializes transactions and rolls the whole store back when fn
// returns an error. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.d.clone()
	writes := s.writes
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.writes = writes
		s.mu.Unlock()
		return err
	}
	return nil
}

// FailOn makes the named operation, e.g. "CreateVariant" or "Upsert",
// return err until ClearFailures is called.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]error{}
}

// Writes counts committed mutating operations.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// check must be called with mu held.
func (s *Store) check(op string) error {
	if err := s.failures[op]; err != nil {
		return fmt.Errorf("memstore %s: %w", op, err)
	}
	return nil
}

// write must be called with mu held.
func (s *Store) write(op string) error {
	if err := s.check(op); err != nil {
		return err
	}
	s.writes++
	return nil
}

func (s *Store) Attributes() *AttributeRepo { return &AttributeRepo{s: s} }
func (s *Store) Categories() *CategoryRepo   { return &CategoryRepo{s: s} }
func (s *Store) Products() *ProductRepo       { return &ProductRepo{s: s} }
func (s *Store) Stock() *StockRepo            { return &StockRepo{s: s} }

// Counts is a row count per table.
type Counts struct {
	Attributes        int
	Terms             int
	Categories        int
	Products          int
	ProductCategories int
	ProductAttributes int
	ProductTerms      int
	Variants          int
	VariantTerms      int
	Stock             int
}

func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Attributes:        len(s.d.attributes),
		Terms:             len(s.d.terms),
		Categories:        len(s.d.categories),
		Products:          len(s.d.products),
		ProductCategories: len(s.d.productCategories),
		ProductAttributes: len(s.d.productAttributes),
		ProductTerms:      len(s.d.productTerms),
		Variants:          len(s.d.variants),
		VariantTerms:      len(s.d.variantTerms),
		Stock:             len(s.d.stock),
	}
}

// VariantTermsOf returns every variant term row referencing variantID.
func (s *Store) VariantTermsOf(variantID string) []model.VariantTerm {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.VariantTerm
	for _, t := range s.d.variantTerms {
		if t.VariantID == variantID {
			out = append(out, t)
		}
	}
	return out
}

// StockOf returns every stock row referencing variantID.
func (s *Store) StockOf(variantID string) []model.StockRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.StockRecord
	for _, rec := range s.d.stock {
		if rec.VariantID == variantID {
			out = append(out, rec)
		}
	}
	return out
}

// VariantsOf returns the variants of productID regardless of tenant.
func (s *Store) VariantsOf(productID string) []model.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Variant
	for _, v := range s.d.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	sortVariants(out)
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// filter returns the elements of in for which keep is true, in a new slice.
func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
