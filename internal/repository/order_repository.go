package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/webshop/internal/database"
	"github.com/iliyamo/webshop/internal/model"
)

// OrderRepo writes orders with their lines and lists a user's orders.  Every
// order is created in a single transaction so a header without its lines is
// never visible.
type OrderRepo struct {
	db  database.Handle
	now func() time.Time
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db database.Handle) *OrderRepo {
	return &OrderRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// PlaceOrder validates items, then inserts the customer_order header and one
// order_line per item inside one transaction.  The returned Order carries the
// generated id and the server-assigned order date.
func (r *OrderRepo) PlaceOrder(ctx context.Context, customerID uint64, items []model.LineItem) (model.Order, error) {
	if customerID == 0 {
		return model.Order{}, ErrInvalidCustomer
	}
	if len(items) == 0 {
		return model.Order{}, ErrEmptyOrder
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return model.Order{}, ErrInvalidQuantity
		}
	}

	order := model.Order{CustomerID: customerID, OrderDate: r.now().Truncate(time.Second)}
	err := withTx(ctx, r.db, func(tx *sql.Tx) (string, error) {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO customer_order (order_date, customer_id) VALUES (?,?)",
			order.OrderDate, order.CustomerID)
		if err != nil {
			return "insert order", err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return "insert order", err
		}
		order.ID = uint64(id)

		// Lines go in only after the header id is known.
		for _, it := range items {
			line := model.OrderLine{OrderID: order.ID, ProductID: it.ProductID, Quantity: it.Quantity}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO order_line (order_id, product_id, quantity) VALUES (?,?,?)",
				line.OrderID, line.ProductID, line.Quantity); err != nil {
				return "insert order line", err
			}
		}
		return "", nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// ListForUser returns every order of username with its products.  Products
// are loaded with one query per order.
func (r *OrderRepo) ListForUser(ctx context.Context, username string) ([]model.OrderSummary, error) {
	const q = `SELECT customer_order.id, customer_order.order_date
               FROM customer_order
               INNER JOIN user ON user.id = customer_order.customer_id
               WHERE user.username=?
               ORDER BY customer_order.id`
	rows, err := r.db.QueryContext(ctx, q, username)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]model.OrderSummary, 0)
	for rows.Next() {
		var s model.OrderSummary
		if err := rows.Scan(&s.OrderID, &s.OrderDate); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list orders: %w", err)
	}
	rows.Close()

	for i := range out {
		products, err := r.orderProducts(ctx, out[i].OrderID)
		if err != nil {
			return nil, err
		}
		out[i].Products = products
	}
	return out, nil
}

func (r *OrderRepo) orderProducts(ctx context.Context, orderID uint64) ([]model.OrderedProduct, error) {
	const q = `SELECT product.id, product.product_name, product.price, product.image_url, product.category, order_line.quantity
               FROM product
               INNER JOIN order_line ON order_line.product_id = product.id
               WHERE order_line.order_id=?`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order %d products: %w", orderID, err)
	}
	defer rows.Close()

	products := make([]model.OrderedProduct, 0)
	for rows.Next() {
		var (
			p     model.OrderedProduct
			image sql.NullString
			cat   sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &image, &cat, &p.Quantity); err != nil {
			return nil, fmt.Errorf("scan order product: %w", err)
		}
		p.ImageURL = image.String
		p.Category = cat.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list order %d products: %w", orderID, err)
	}
	return products, nil
}
