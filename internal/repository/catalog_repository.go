package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/webshop/internal/database"
	"github.com/iliyamo/webshop/internal/model"
)

// CatalogRepo reads and extends the product and product_category tables.
// Reads need no authentication; the Add* writers are reached only through
// the admin routes.
type CatalogRepo struct {
	db database.Handle
}

// NewCatalogRepo returns a CatalogRepo bound to db.
func NewCatalogRepo(db database.Handle) *CatalogRepo { return &CatalogRepo{db: db} }

const selectProducts = `SELECT id, product_name, price, units_stored, product_description, image_url, category FROM product`

// ListProducts returns every product, or only those in category when it is
// non-empty.
func (r *CatalogRepo) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if category != "" {
		rows, err = r.db.QueryContext(ctx, selectProducts+" WHERE category=?", category)
	} else {
		rows, err = r.db.QueryContext(ctx, selectProducts)
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]model.Product, 0)
	for rows.Next() {
		var (
			p     model.Product
			units sql.NullInt64
			desc  sql.NullString
			image sql.NullString
			cat   sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &units, &desc, &image, &cat); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.UnitsStored = int(units.Int64)
		p.Description = desc.String
		p.ImageURL = image.String
		p.Category = cat.String
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// ListCategories returns all categories.
func (r *CatalogRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT category_name, category_description FROM product_category")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]model.Category, 0)
	for rows.Next() {
		var (
			c    model.Category
			desc sql.NullString
		)
		if err := rows.Scan(&c.Name, &desc); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Description = desc.String
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// AddCategories inserts all categories in one transaction.
func (r *CatalogRepo) AddCategories(ctx context.Context, categories []model.Category) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) (string, error) {
		for _, c := range categories {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO product_category (category_name, category_description) VALUES (?,?)",
				c.Name, c.Description); err != nil {
				return "insert category", err
			}
		}
		return "", nil
	})
}

// AddProducts inserts all products in one transaction.
func (r *CatalogRepo) AddProducts(ctx context.Context, products []model.NewProduct) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) (string, error) {
		for _, p := range products {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO product (product_name, price, image_url, category) VALUES (?,?,?,?)",
				p.Name, p.Price, p.ImageURL, p.Category); err != nil {
				return "insert product", err
			}
		}
		return "", nil
	})
}
