package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/webshop/internal/config"
	"github.com/iliyamo/webshop/internal/handler"
	"github.com/iliyamo/webshop/internal/metrics"
	"github.com/iliyamo/webshop/internal/middleware"
	"github.com/iliyamo/webshop/internal/model"
	"github.com/iliyamo/webshop/internal/repository"
	"github.com/iliyamo/webshop/internal/utils"
)

const secret = "router-secret"

type levels map[string]int

func (l levels) Permissions(_ context.Context, username string) (int, error) {
	lvl, ok := l[username]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return lvl, nil
}

type catalog struct{ added int }

func (c *catalog) ListProducts(context.Context, string) ([]model.Product, error) {
	return []model.Product{}, nil
}
func (c *catalog) ListCategories(context.Context) ([]model.Category, error) {
	return []model.Category{}, nil
}
func (c *catalog) AddCategories(_ context.Context, cs []model.Category) error {
	c.added += len(cs)
	return nil
}
func (c *catalog) AddProducts(_ context.Context, ps []model.NewProduct) error {
	c.added += len(ps)
	return nil
}

func newServer(t *testing.T) (*echo.Echo, *catalog) {
	t.Helper()
	e := echo.New()
	store := &catalog{}
	ch := handler.NewCatalogHandler(store)
	users := levels{"admin": model.PermissionCatalogAdmin, "ann": model.PermissionStandard}

	RegisterRoutes(e, prometheus.NewRegistry())
	RegisterPublic(e, ch, config.CacheConfig{}, nil)
	RegisterCustomer(e, handler.NewOrderHandler(nil, nil, nil, nil), secret, metrics.Nop{})
	RegisterAdmin(e, ch, users, secret, metrics.Nop{})
	return e, store
}

func call(t *testing.T, e *echo.Echo, method, target, body, user string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != "" {
		token, err := utils.IssueToken(secret, user, 0)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutesRequireCatalogPermission(t *testing.T) {
	e, store := newServer(t)
	body := `[{"productName":"Rake","price":12,"category":"garden"}]`

	rec := call(t, e, http.MethodPost, "/products", body, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, e, http.MethodPost, "/products", body, "ann")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, middleware.ForbiddenBody, rec.Body.String())
	assert.Zero(t, store.added)

	rec = call(t, e, http.MethodPost, "/products", body, "admin")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.added)
}

func TestOrderRoutesRequireToken(t *testing.T) {
	e, _ := newServer(t)

	rec := call(t, e, http.MethodGet, "/orders", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, middleware.ForbiddenBody, rec.Body.String())

	rec = call(t, e, http.MethodPost, "/order", `{"products":[{"id":1,"quantity":1}]}`, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublicRoutes(t *testing.T) {
	e, _ := newServer(t)

	assert.Equal(t, http.StatusOK, call(t, e, http.MethodGet, "/products", "", "").Code)
	assert.Equal(t, http.StatusOK, call(t, e, http.MethodGet, "/categories", "", "").Code)
	assert.Equal(t, http.StatusOK, call(t, e, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, call(t, e, http.MethodGet, "/metrics", "", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, e, http.MethodGet, "/nope", "", "").Code)
}
