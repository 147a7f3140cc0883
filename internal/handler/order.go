package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/webshop/internal/metrics"
	"github.com/iliyamo/webshop/internal/middleware"
	"github.com/iliyamo/webshop/internal/model"
	"github.com/iliyamo/webshop/internal/queue"
	"github.com/iliyamo/webshop/internal/repository"
)

// OrderHandler places orders for, and lists orders of, the authenticated
// user.  Both routes sit behind BearerAuth.
type OrderHandler struct {
	Users   UserStore
	Orders  OrderStore
	Events  OrderEvents // may be nil
	Metrics metrics.Recorder
}

func NewOrderHandler(u UserStore, o OrderStore, ev OrderEvents, m metrics.Recorder) *OrderHandler {
	if m == nil {
		m = metrics.Nop{}
	}
	return &OrderHandler{Users: u, Orders: o, Events: ev, Metrics: m}
}

// placeOrderReq is the storefront's order body.  customerId is optional; the
// order always belongs to the token's user and a different id is refused.
type placeOrderReq struct {
	CustomerID *uint64          `json:"customerId"`
	Products   []model.LineItem `json:"products"`
}

// PlaceOrder handles POST /order.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	var req placeOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	username := middleware.Username(c)
	u, err := h.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.String(http.StatusForbidden, middleware.ForbiddenBody)
		}
		c.Logger().Errorf("order: resolve %q: %v", username, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if req.CustomerID != nil && *req.CustomerID != u.ID {
		return c.String(http.StatusForbidden, middleware.ForbiddenBody)
	}

	order, err := h.Orders.PlaceOrder(ctx, u.ID, req.Products)
	if err != nil {
		var txErr *repository.TxFailedError
		switch {
		case errors.Is(err, repository.ErrEmptyOrder), errors.Is(err, repository.ErrInvalidQuantity), errors.Is(err, repository.ErrInvalidCustomer):
			h.Metrics.RecordOrderFailed("invalid")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.As(err, &txErr):
			h.Metrics.RecordOrderFailed("transaction")
			c.Logger().Errorf("order for customer %d: %v", u.ID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order could not be placed"})
		default:
			h.Metrics.RecordOrderFailed("transaction")
			c.Logger().Errorf("order for customer %d: %v", u.ID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	h.Metrics.RecordOrderPlaced(len(req.Products))

	if h.Events != nil {
		// The order is durable at this point; a broker outage must not turn
		// it into a failed request.
		pubCtx, pubCancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 3*time.Second)
		if err := h.Events.PublishOrderPlaced(pubCtx, queue.NewOrderPlacedEvent(order, u.Username, req.Products)); err != nil {
			c.Logger().Warnf("publish order %d: %v", order.ID, err)
		}
		pubCancel()
	}
	return c.JSON(http.StatusOK, echo.Map{"orderId": order.ID})
}

// ListOrders handles GET /orders.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	orders, err := h.Orders.ListForUser(ctx, middleware.Username(c))
	if err != nil {
		c.Logger().Errorf("list orders: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, orders)
}
