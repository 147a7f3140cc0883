package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/webshop/internal/config"
	"github.com/iliyamo/webshop/internal/handler"
	"github.com/iliyamo/webshop/internal/metrics"
	"github.com/iliyamo/webshop/internal/middleware"
	"github.com/iliyamo/webshop/internal/model"
)

// RegisterRoutes registers the operational endpoints: a health check for load
// balancers and the Prometheus exposition.
func RegisterRoutes(e *echo.Echo, gatherer prometheus.Gatherer) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(gatherer)))
}

// RegisterPublic registers the catalog listings.  They need no session and
// are served through the redis response cache; a nil client disables it.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cache := middleware.ResponseCache(cacheCfg, rdb)
	e.GET("/products", h.ListProducts, cache)
	e.GET("/categories", h.ListCategories, cache)
}

// RegisterAuth registers registration, login and the personal-information
// endpoint.  Registration and login are rate limited per client; reading
// the profile requires a bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rlCfg config.RateLimitConfig, rdb *redis.Client, rec metrics.Recorder) {
	limit := middleware.RateLimit(rlCfg, rdb)
	e.POST("/personal", a.Register, limit)
	e.POST("/login", a.Login, limit)

	e.GET("/personal", a.Personal, middleware.BearerAuth(a.Cfg.JWTSecret, rec))
}

// RegisterCustomer registers the ordering endpoints.  Every route requires a
// bearer token; the order owner is always the token's user.
func RegisterCustomer(e *echo.Echo, h *handler.OrderHandler, jwtSecret string, rec metrics.Recorder) {
	auth := middleware.BearerAuth(jwtSecret, rec)
	e.POST("/order", h.PlaceOrder, auth)
	e.GET("/orders", h.ListOrders, auth)
}

// RegisterAdmin registers the catalog maintenance endpoints.  They require a
// bearer token whose user has at least catalog-admin permissions.
func RegisterAdmin(e *echo.Echo, h *handler.CatalogHandler, users middleware.PermissionLookup, jwtSecret string, rec metrics.Recorder) {
	// Routes sit at the root, so middleware is attached per route rather
	// than through a group that would also catch unmatched paths.
	admin := []echo.MiddlewareFunc{
		middleware.BearerAuth(jwtSecret, rec),
		middleware.RequirePermission(users, model.PermissionCatalogAdmin),
	}
	e.POST("/categories", h.AddCategories, admin...)
	e.POST("/products", h.AddProducts, admin...)
}
