package memstore

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
)

var (
	_ category.Repository    = (*CategoryRepo)(nil)
	_ product.CategoryLookup = (*CategoryRepo)(nil)
)

type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) Create(_ context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("CreateCategory"); err != nil {
		return err
	}
	if err := r.uniqueSlug(c); err != nil {
		return err
	}
	r.s.d.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) FindByID(_ context.Context, orgID, id string) (*model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindCategoryByID"); err != nil {
		return nil, err
	}
	c, ok := r.s.d.categories[id]
	if !ok || c.OrganizationID != orgID {
		return nil, nil
	}
	return &c, nil
}

func (r *CategoryRepo) FindAll(_ context.Context, orgID string) ([]model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindCategories"); err != nil {
		return nil, err
	}
	var out []model.Category
	for _, c := range r.s.d.categories {
		if c.OrganizationID == orgID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepo) FindByIDs(_ context.Context, orgID string, ids []string) ([]model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("FindCategoriesByIDs"); err != nil {
		return nil, err
	}
	var out []model.Category
	for _, c := range r.s.d.categories {
		if c.OrganizationID == orgID && contains(ids, c.ID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepo) Update(_ context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("UpdateCategory"); err != nil {
		return err
	}
	if err := r.uniqueSlug(c); err != nil {
		return err
	}
	if old, ok := r.s.d.categories[c.ID]; ok && old.OrganizationID == c.OrganizationID {
		r.s.d.categories[c.ID] = *c
	}
	return nil
}

// Delete removes the category and its product assignments. Children make
// it fail, matching the RESTRICT foreign key.
func (r *CategoryRepo) Delete(_ context.Context, orgID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("DeleteCategory"); err != nil {
		return err
	}
	c, ok := r.s.d.categories[id]
	if !ok || c.OrganizationID != orgID {
		return nil
	}
	for _, other := range r.s.d.categories {
		if other.ParentID != nil && *other.ParentID == id {
			return errReferenced
		}
	}
	r.s.d.productCategories = filter(r.s.d.productCategories, func(pc model.CategoryAssignment) bool {
		return pc.CategoryID != id
	})
	delete(r.s.d.categories, id)
	return nil
}

func (r *CategoryRepo) IsSlugTaken(_ context.Context, orgID, slug, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("IsCategorySlugTaken"); err != nil {
		return false, err
	}
	for _, c := range r.s.d.categories {
		if c.OrganizationID == orgID && c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *CategoryRepo) HasChildren(_ context.Context, orgID, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("HasChildren"); err != nil {
		return false, err
	}
	for _, c := range r.s.d.categories {
		if c.OrganizationID == orgID && c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *CategoryRepo) uniqueSlug(c *model.Category) error {
	for _, other := range r.s.d.categories {
		if other.ID != c.ID && other.OrganizationID == c.OrganizationID && other.Slug == c.Slug {
			return apperr.Validation("slug %q already exists", c.Slug)
		}
	}
	return nil
}
