package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/webshop/internal/middleware"
	"github.com/iliyamo/webshop/internal/model"
	"github.com/iliyamo/webshop/internal/queue"
	"github.com/iliyamo/webshop/internal/repository"
)

var errStorage = errors.New("connection refused")

// fakeUsers is an in-memory UserStore.  Lookups ignore case like the
// user.username collation does.
type fakeUsers struct {
	users     map[string]model.User
	passwords map[string]string
	err       error
	created   []model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]model.User{}, passwords: map[string]string{}}
}

func (f *fakeUsers) add(u model.User, pw string) {
	f.users[strings.ToLower(u.Username)] = u
	f.passwords[strings.ToLower(u.Username)] = pw
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	u, ok := f.users[strings.ToLower(username)]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, first, last, username, pw string) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	if _, ok := f.users[strings.ToLower(username)]; ok {
		return model.User{}, repository.ErrDuplicateUsername
	}
	u := model.User{ID: uint64(len(f.users) + 1), FirstName: first, LastName: last, Username: username}
	f.add(u, pw)
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, username, pw string) (model.User, bool, error) {
	if f.err != nil {
		return model.User{}, false, f.err
	}
	key := strings.ToLower(username)
	u, ok := f.users[key]
	if !ok || f.passwords[key] != pw {
		return model.User{}, false, nil
	}
	return u, true, nil
}

type fakeCatalog struct {
	products   []model.Product
	categories []model.Category
	err        error

	gotCategory     string
	addedCategories []model.Category
	addedProducts   []model.NewProduct
}

func (f *fakeCatalog) ListProducts(_ context.Context, category string) ([]model.Product, error) {
	f.gotCategory = category
	return f.products, f.err
}

func (f *fakeCatalog) ListCategories(context.Context) ([]model.Category, error) {
	return f.categories, f.err
}

func (f *fakeCatalog) AddCategories(_ context.Context, cs []model.Category) error {
	if f.err != nil {
		return f.err
	}
	f.addedCategories = append(f.addedCategories, cs...)
	return nil
}

func (f *fakeCatalog) AddProducts(_ context.Context, ps []model.NewProduct) error {
	if f.err != nil {
		return f.err
	}
	f.addedProducts = append(f.addedProducts, ps...)
	return nil
}

type fakeOrders struct {
	order     model.Order
	err       error
	summaries []model.OrderSummary

	gotCustomer uint64
	gotItems    []model.LineItem
	gotUsername     string
	listHadDeadline bool
}

func (f *fakeOrders) PlaceOrder(_ context.Context, customerID uint64, items []model.LineItem) (model.Order, error) {
	f.gotCustomer = customerID
	f.gotItems = items
	if f.err != nil {
		return model.Order{}, f.err
	}
	o := f.order
	o.CustomerID = customerID
	return o, nil
}

func (f *fakeOrders) ListForUser(ctx context.Context, username string) ([]model.OrderSummary, error) {
	f.gotUsername = username
	_, f.listHadDeadline = ctx.Deadline()
	return f.summaries, f.err
}

type fakeEvents struct {
	err    error
	events []queue.OrderPlacedEvent
}

func (f *fakeEvents) PublishOrderPlaced(_ context.Context, ev queue.OrderPlacedEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

// do runs h for a request built from method, target and a JSON body.  A
// non-empty username is stored as if BearerAuth had run.
func do(h echo.HandlerFunc, method, target, body, username string) *httptest.ResponseRecorder {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if username != "" {
		c.Set(middleware.UsernameKey, username)
	}
	_ = h(c)
	return rec
}
