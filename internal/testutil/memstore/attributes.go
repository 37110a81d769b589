package memstore

import (
	"context"
	"errors"
	"sort"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/attribute"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
)

var (
	_ attribute.Repository    = (*AttributeRepo)(nil)
	_ product.AttributeLookup = (*AttributeRepo)(nil)
)

var errReferenced = errors.New("row is still referenced")

type AttributeRepo struct{ s *Store }

func (r *AttributeRepo) CreateAttribute(_ context.Context, a *model.Attribute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("CreateAttribute"); err != nil {
		return err
	}
	for _, other := range r.s.d.attributes {
		if other.OrganizationID == a.OrganizationID && other.Slug == a.Slug {
			return apperr.Validation("slug %q already exists", a.Slug)
		}
	}
	r.s.d.attributes[a.ID] = *a
	return nil
}

func (r *AttributeRepo) FindAttributeByID(_ context.Context, orgID, id string) (*model.Attribute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindAttributeByID"); err != nil {
		return nil, err
	}
	a, ok := r.s.d.attributes[id]
	if !ok || a.OrganizationID != orgID {
		return nil, nil
	}
	return &a, nil
}

func (r *AttributeRepo) FindAttributes(_ context.Context, orgID string) ([]model.Attribute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindAttributes"); err != nil {
		return nil, err
	}
	var out []model.Attribute
	for _, a := range r.s.d.attributes {
		if a.OrganizationID == orgID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *AttributeRepo) FindAttributesByIDs(_ context.Context, orgID string, ids []string) ([]model.Attribute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindAttributesByIDs"); err != nil {
		return nil, err
	}
	var out []model.Attribute
	for _, a := range r.s.d.attributes {
		if a.OrganizationID == orgID && contains(ids, a.ID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *AttributeRepo) UpdateAttribute(_ context.Context, a *model.Attribute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("UpdateAttribute"); err != nil {
		return err
	}
	for _, other := range r.s.d.attributes {
		if other.ID != a.ID && other.OrganizationID == a.OrganizationID && other.Slug == a.Slug {
			return apperr.Validation("slug %q already exists", a.Slug)
		}
	}
	if old, ok := r.s.d.attributes[a.ID]; ok && old.OrganizationID == a.OrganizationID {
		r.s.d.attributes[a.ID] = *a
	}
	return nil
}

// DeleteAttribute cascades to the attribute's terms like the foreign key does.
func (r *AttributeRepo) DeleteAttribute(_ context.Context, orgID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("DeleteAttribute"); err != nil {
		return err
	}
	a, ok := r.s.d.attributes[id]
	if !ok || a.OrganizationID != orgID {
		return nil
	}
	for _, pa := range r.s.d.productAttributes {
		if pa.AttributeID == id {
			return errReferenced
		}
	}
	for termID, t := range r.s.d.terms {
		if t.AttributeID == id {
			if r.termInUse(termID) {
				return errReferenced
			}
			delete(r.s.d.terms, termID)
		}
	}
	delete(r.s.d.attributes, id)
	return nil
}

func (r *AttributeRepo) IsAttributeSlugTaken(_ context.Context, orgID, slug, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("IsAttributeSlugTaken"); err != nil {
		return false, err
	}
	for _, a := range r.s.d.attributes {
		if a.OrganizationID == orgID && a.Slug == slug && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *AttributeRepo) IsAttributeInUse(_ context.Context, orgID, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("IsAttributeInUse"); err != nil {
		return false, err
	}
	for _, pa := range r.s.d.productAttributes {
		if pa.OrganizationID == orgID && pa.AttributeID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *AttributeRepo) CreateTerm(_ context.Context, t *model.Term) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("CreateTerm"); err != nil {
		return err
	}
	if _, ok := r.s.d.attributes[t.AttributeID]; !ok {
		return errors.New("memstore: term references a missing attribute")
	}
	for _, other := range r.s.d.terms {
		if other.OrganizationID == t.OrganizationID && other.AttributeID == t.AttributeID && other.Slug == t.Slug {
			return apperr.Validation("slug %q already exists", t.Slug)
		}
	}
	r.s.d.terms[t.ID] = *t
	return nil
}

func (r *AttributeRepo) FindTermByID(_ context.Context, orgID, id string) (*model.Term, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindTermByID"); err != nil {
		return nil, err
	}
	t, ok := r.s.d.terms[id]
	if !ok || t.OrganizationID != orgID {
		return nil, nil
	}
	return &t, nil
}

func (r *AttributeRepo) FindTerms(_ context.Context, orgID, attributeID string) ([]model.Term, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindTerms"); err != nil {
		return nil, err
	}
	var out []model.Term
	for _, t := range r.s.d.terms {
		if t.OrganizationID == orgID && t.AttributeID == attributeID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *AttributeRepo) FindTermsByIDs(_ context.Context, orgID string, ids []string) ([]model.Term, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindTermsByIDs"); err != nil {
		return nil, err
	}
	var out []model.Term
	for _, t := range r.s.d.terms {
		if t.OrganizationID == orgID && contains(ids, t.ID) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *AttributeRepo) UpdateTerm(_ context.Context, t *model.Term) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("UpdateTerm"); err != nil {
		return err
	}
	for _, other := range r.s.d.terms {
		if other.ID != t.ID && other.OrganizationID == t.OrganizationID &&
			other.AttributeID == t.AttributeID && other.Slug == t.Slug {
			return apperr.Validation("slug %q already exists", t.Slug)
		}
	}
	if old, ok := r.s.d.terms[t.ID]; ok && old.OrganizationID == t.OrganizationID {
		r.s.d.terms[t.ID] = *t
	}
	return nil
}

func (r *AttributeRepo) DeleteTerm(_ context.Context, orgID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("DeleteTerm"); err != nil {
		return err
	}
	t, ok := r.s.d.terms[id]
	if !ok || t.OrganizationID != orgID {
		return nil
	}
	if r.termInUse(id) {
		return errReferenced
	}
	delete(r.s.d.terms, id)
	return nil
}

func (r *AttributeRepo) IsTermSlugTaken(_ context.Context, orgID, attributeID, slug, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("IsTermSlugTaken"); err != nil {
		return false, err
	}
	for _, t := range r.s.d.terms {
		if t.OrganizationID == orgID && t.AttributeID == attributeID && t.Slug == slug && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *AttributeRepo) IsTermInUse(_ context.Context, orgID, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("IsTermInUse"); err != nil {
		return false, err
	}
	t, ok := r.s.d.terms[id]
	if !ok || t.OrganizationID != orgID {
		return false, nil
	}
	return r.termInUse(id), nil
}

func (r *AttributeRepo) termInUse(id string) bool {
	for _, pt := range r.s.d.productTerms {
		if pt.TermID == id {
			return true
		}
	}
	for _, vt := range r.s.d.variantTerms {
		if vt.TermID == id {
			return true
		}
	}
	return false
}
