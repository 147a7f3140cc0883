package handler

import (
	"context"

	"github.com/iliyamo/webshop/internal/model"
	"github.com/iliyamo/webshop/internal/queue"
)

// UserStore is the credential store the auth and order handlers depend on.
// *repository.UserRepo implements it.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, firstName, lastName, username, password string) (model.User, error)
	Authenticate(ctx context.Context, username, password string) (model.User, bool, error)
}

// CatalogStore reads and extends the product catalog.
type CatalogStore interface {
	ListProducts(ctx context.Context, category string) ([]model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	AddCategories(ctx context.Context, categories []model.Category) error
	AddProducts(ctx context.Context, products []model.NewProduct) error
}

// OrderStore places and lists orders.
type OrderStore interface {
	PlaceOrder(ctx context.Context, customerID uint64, items []model.LineItem) (model.Order, error)
	ListForUser(ctx context.Context, username string) ([]model.OrderSummary, error)
}

// OrderEvents receives committed orders.  A nil OrderEvents disables
// publishing.
type OrderEvents interface {
	PublishOrderPlaced(ctx context.Context, event queue.OrderPlacedEvent) error
}
