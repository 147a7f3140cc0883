package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/webshop/internal/model"
)

var productCols = []string{"id", "product_name", "price", "units_stored", "product_description", "image_url", "category"}

func newCatalogRepo(t *testing.T) (*CatalogRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCatalogRepo(db), mock
}

func TestListProductsAll(t *testing.T) {
	repo, mock := newCatalogRepo(t)

	mock.ExpectQuery("^" + regexp.QuoteMeta(selectProducts) + "$").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(1, "Phone", 199.0, 5, "Smart", "/products/phone.png", "electronics").
			AddRow(2, "Mug", 7.5, nil, nil, "/products/mug.png", "kitchen"))

	products, err := repo.ListProducts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, model.Product{ID: 1, Name: "Phone", Price: 199, UnitsStored: 5, Description: "Smart", ImageURL: "/products/phone.png", Category: "electronics"}, products[0])
	assert.Equal(t, 0, products[1].UnitsStored)
	assert.Empty(t, products[1].Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductsByCategory(t *testing.T) {
	repo, mock := newCatalogRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectProducts + " WHERE category=?")).
		WithArgs("electronics").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(1, "Phone", 199.0, 5, "Smart", "/products/phone.png", "electronics"))

	products, err := repo.ListProducts(context.Background(), "electronics")
	require.NoError(t, err)
	require.Len(t, products, 1)
	for _, p := range products {
		assert.Equal(t, "electronics", p.Category)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductsEmptyIsNotNil(t *testing.T) {
	repo, mock := newCatalogRepo(t)

	mock.ExpectQuery("FROM product WHERE category").
		WithArgs("garden").
		WillReturnRows(sqlmock.NewRows(productCols))

	products, err := repo.ListProducts(context.Background(), "garden")
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestListProductsStorageError(t *testing.T) {
	repo, mock := newCatalogRepo(t)

	mock.ExpectQuery("FROM product").WillReturnError(errors.New("no such table"))

	_, err := repo.ListProducts(context.Background(), "")
	assert.ErrorContains(t, err, "list products")
}

func TestListCategories(t *testing.T) {
	repo, mock := newCatalogRepo(t)

	mock.ExpectQuery("SELECT category_name, category_description FROM product_category").
		WillReturnRows(sqlmock.NewRows([]string{"category_name", "category_description"}).
			AddRow("electronics", "Gadgets").
			AddRow("kitchen", nil))

	cats, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Category{{Name: "electronics", Description: "Gadgets"}, {Name: "kitchen"}}, cats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCategoriesIsAtomic(t *testing.T) {
	repo, mock := newCatalogRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO product_category").
		WithArgs("garden", "Outdoor").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO product_category").
		WithArgs("garden", "Again").
		WillReturnError(errors.New("duplicate"))
	mock.ExpectRollback()

	err := repo.AddCategories(context.Background(), []model.Category{
		{Name: "garden", Description: "Outdoor"},
		{Name: "garden", Description: "Again"},
	})
	var txErr *TxFailedError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "insert category", txErr.Op)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddProducts(t *testing.T) {
	repo, mock := newCatalogRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO product \\(product_name, price, image_url, category\\)").
		WithArgs("Rake", 12.5, "/products/rake.png", "garden").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	err := repo.AddProducts(context.Background(), []model.NewProduct{
		{Name: "Rake", Price: 12.5, ImageURL: "/products/rake.png", Category: "garden"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
