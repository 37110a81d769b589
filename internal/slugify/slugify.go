// Package slugify derives and validates the url-safe slugs used by
// attributes, terms and categories.
package slugify

import (
	"strings"

	"github.com/gosimple/slug"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
)

// Resolve returns the normalized form of raw, or a slug derived from name
// when raw is empty.
func Resolve(raw, name string) (string, error) {
	source := strings.TrimSpace(raw)
	if source == "" {
		source = name
	}
	s := slug.Make(source)
	if s == "" || !slug.IsSlug(s) {
		return "", apperr.Validation("cannot derive a slug from %q", source)
	}
	return s, nil
}
