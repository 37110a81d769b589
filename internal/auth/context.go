package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
)

const DefaultTenantHeader = "X-Organization-ID"

type organizationKey struct{}

// WithOrganizationID stores the resolved tenant scope on ctx.
func WithOrganizationID(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, organizationKey{}, organizationID)
}

// GetOrganizationID returns the tenant scope placed on ctx by RequireOrganization.
func GetOrganizationID(ctx context.Context) string {
	if val, ok := ctx.Value(organizationKey{}).(string); ok {
		return val
	}
	return ""
}

// OrganizationFrom returns the tenant scope on ctx or an Unauthorized error.
func OrganizationFrom(ctx context.Context) (string, error) {
	orgID := GetOrganizationID(ctx)
	if orgID == "" {
		return "", apperr.Unauthorized("missing organization scope")
	}
	return orgID, nil
}

// RequireOrganization resolves the tenant scope from header and rejects
// requests without one. The value is trusted as-is; authentication happens upstream.
func RequireOrganization(header string) gin.HandlerFunc {
	if header == "" {
		header = DefaultTenantHeader
	}
	return func(c *gin.Context) {
		orgID := strings.TrimSpace(c.GetHeader(header))
		if orgID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "missing organization scope",
				"status":  http.StatusUnauthorized,
			})
			return
		}
		c.Request = c.Request.WithContext(WithOrganizationID(c.Request.Context(), orgID))
		c.Next()
	}
}
