package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type echoHandler struct{}

func (echoHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, auth.GetOrganizationID(c.Request.Context()))
	})
}

func serve(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRouterScopesResourcesByTenant(t *testing.T) {
	r := NewRouter(RouterConfig{
		Logger:       logger.NewNop(),
		TenantHeader: "X-Tenant",
		Handlers:     []Registrar{echoHandler{}},
	})

	resp := serve(r, http.MethodGet, "/v1/echo", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = serve(r, http.MethodGet, "/v1/echo", map[string]string{"X-Tenant": "org-9"})
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "org-9", resp.Body.String())
}

func TestRouterProbes(t *testing.T) {
	ready := errors.New("db down")
	r := NewRouter(RouterConfig{
		Logger: logger.NewNop(),
		Ready:  func(context.Context) error { return ready },
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/readyz", nil).Code)

	ready = nil
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/readyz", nil).Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	r := NewRouter(RouterConfig{Logger: logger.NewNop()})

	resp := serve(r, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "not_found")
}

func TestRouterExposesMetrics(t *testing.T) {
	r := NewRouter(RouterConfig{
		Logger:   logger.NewNop(),
		Metrics:  metrics.New(),
		Handlers: []Registrar{echoHandler{}},
	})
	serve(r, http.MethodGet, "/v1/echo", map[string]string{auth.DefaultTenantHeader: "org-1"})

	resp := serve(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{endpoint="/v1/echo",method="GET",status="2xx"} 1`), body)
}
