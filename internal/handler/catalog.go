package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/webshop/internal/model"
)

// CatalogHandler serves the public product and category listings and the
// admin endpoints that extend them.
type CatalogHandler struct {
	Catalog CatalogStore
	// Purge drops cached catalog listings after a successful write.  May be
	// nil.
	Purge func(ctx context.Context) error
}

func NewCatalogHandler(s CatalogStore) *CatalogHandler { return &CatalogHandler{Catalog: s} }

// ListProducts handles GET /products with an optional ?category= filter.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	products, err := h.Catalog.ListProducts(c.Request().Context(), category)
	if err != nil {
		c.Logger().Errorf("list products: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, products)
}

// ListCategories handles GET /categories.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.Catalog.ListCategories(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list categories: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, categories)
}

// newCategoryReq keeps the admin tool's "description" key, which differs from
// the "categoryDescription" key of the listing.
type newCategoryReq struct {
	Name        string `json:"categoryName"`
	Description string `json:"description"`
}

// AddCategories handles POST /categories: a JSON array inserted atomically.
func (h *CatalogHandler) AddCategories(c echo.Context) error {
	var req []newCategoryReq
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no categories given"})
	}
	categories := make([]model.Category, 0, len(req))
	for _, r := range req {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "categoryName required"})
		}
		categories = append(categories, model.Category{Name: name, Description: r.Description})
	}
	if err := h.Catalog.AddCategories(c.Request().Context(), categories); err != nil {
		c.Logger().Errorf("add categories: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add categories failed"})
	}
	h.purge(c)
	return c.String(http.StatusOK, "Categories added!")
}

// AddProducts handles POST /products: a JSON array inserted atomically.
func (h *CatalogHandler) AddProducts(c echo.Context) error {
	var products []model.NewProduct
	if err := (&echo.DefaultBinder{}).BindBody(c, &products); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(products) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no products given"})
	}
	for _, p := range products {
		if strings.TrimSpace(p.Name) == "" || p.Price < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "productName and a non-negative price required"})
		}
	}
	if err := h.Catalog.AddProducts(c.Request().Context(), products); err != nil {
		c.Logger().Errorf("add products: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add products failed"})
	}
	h.purge(c)
	return c.String(http.StatusOK, "Products added!")
}

// purge clears the listing cache.  The write has already committed, so a
// failure only leaves listings stale until their TTL and is logged.
func (h *CatalogHandler) purge(c echo.Context) {
	if h.Purge == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 2*time.Second)
	defer cancel()
	if err := h.Purge(ctx); err != nil {
		c.Logger().Warnf("purge catalog cache: %v", err)
	}
}
