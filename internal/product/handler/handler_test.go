package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/product/usecase"
	"github.com/fekuna/omnipos-catalog-service/internal/testutil/memstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	s := memstore.New()
	uc := usecase.NewProductUseCase(usecase.Deps{
		Repo:       s.Products(),
		Stock:      s.Stock(),
		Attributes: s.Attributes(),
		Categories: s.Categories(),
		Tx:         s,
		Logger:     logger.NewNop(),
	})
	r := gin.New()
	v1 := r.Group("/v1", auth.RequireOrganization(""))
	NewProductHandler(uc, logger.NewNop()).Register(v1)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.DefaultTenantHeader, "org-1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

const mugBody = `{
	"name": "Mug",
	"type": "simple",
	"sku": "MUG-1",
	"price": "9.99",
	"stock": [{"countryCode": "US", "stockLevel": 5, "manageStock": true}]
}`

func decode(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), v), resp.Body.String())
}

func TestProductLifecycle(t *testing.T) {
	r := newRouter()

	resp := do(r, http.MethodPost, "/v1/products", mugBody)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Variants []struct {
			SKU   string `json:"sku"`
			Stock []struct {
				CountryCode string `json:"countryCode"`
				StockLevel  int64  `json:"stockLevel"`
			} `json:"stock"`
		} `json:"variants"`
	}
	decode(t, resp, &created)
	assert.Equal(t, "draft", created.Status)
	require.Len(t, created.Variants, 1)
	assert.Equal(t, "MUG-1", created.Variants[0].SKU)
	require.Len(t, created.Variants[0].Stock, 1)
	assert.Equal(t, int64(5), created.Variants[0].Stock[0].StockLevel)

	resp = do(r, http.MethodGet, "/v1/products?sku=MUG-1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), created.ID)

	resp = do(r, http.MethodGet, "/v1/products", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var summaries []map[string]any
	decode(t, resp, &summaries)
	require.Len(t, summaries, 1)
	assert.EqualValues(t, 5, summaries[0]["totalStock"])
	assert.Equal(t, "0", summaries[0]["variableMinPrice"])

	resp = do(r, http.MethodGet, "/v1/products/sku-check?sku=MUG-1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"exists": true, "available": false}`, resp.Body.String())

	resp = do(r, http.MethodPut, "/v1/products/"+created.ID, `{"name": "Big Mug", "type": "simple", "sku": "MUG-1", "price": "12"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "Big Mug")

	resp = do(r, http.MethodDelete, "/v1/products/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"success": true}`, resp.Body.String())

	resp = do(r, http.MethodGet, "/v1/products?id="+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "not_found")
}

func TestCreateProductValidation(t *testing.T) {
	r := newRouter()

	cases := map[string]string{
		"malformed json":   `{"name":`,
		"missing name":     `{"type": "simple", "price": "1"}`,
		"missing price":    `{"name": "Mug", "type": "simple"}`,
		"empty variable":   `{"name": "Shirt", "type": "variable"}`,
		"negative stock":   `{"name": "Mug", "type": "simple", "price": "1", "stock": [{"countryCode": "US", "stockLevel": -1}]}`,
		"unknown category": `{"name": "Mug", "type": "simple", "price": "1", "categories": ["9b2a3c1e-0d7e-4f43-8f7a-2f87c1e0c111"]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := do(r, http.MethodPost, "/v1/products", body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			assert.Contains(t, resp.Body.String(), "invalid_request")
		})
	}
}

func TestUpdateUnknownProduct(t *testing.T) {
	r := newRouter()

	resp := do(r, http.MethodPut, "/v1/products/missing", mugBody)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = do(r, http.MethodDelete, "/v1/products/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestProductsRequireOrganization(t *testing.T) {
	r := newRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/v1/products", nil))

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
