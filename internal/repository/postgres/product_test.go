package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaifgrit/Rifakat/internal/domain"
	"github.com/kaifgrit/Rifakat/internal/repository"
	"github.com/kaifgrit/Rifakat/pkg/database"
	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

const (
	idA = "3f2b8c1e-6a4d-4f7e-9b1a-2c3d4e5f6a7b"
	idB = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var columns = []string{
	"id", "product_name", "brand", "price", "category", "colors", "created_at", "updated_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func sampleProduct(id string) domain.Product {
	return domain.Product{
		ID:          id,
		ProductName: "Air Runner",
		Brand:       "Nike",
		Price:       2499,
		Category:    "Sneakers",
		Colors: []domain.ColorVariant{{
			ColorName:    "Black",
			ColorHexCode: "#000000",
			ImageURLs:    []string{"https://res.cloudinary.com/demo/image/upload/v1/shoes/a.jpg"},
			Sizes:        []string{"7", "8"},
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func productRow(p domain.Product) []any {
	colors, _ := json.Marshal(p.Colors)
	return []any{p.ID, p.ProductName, p.Brand, p.Price, p.Category, colors, p.CreatedAt, p.UpdatedAt}
}

// ─────────────────────────────────────────────────────────────────────────────
// List
// ─────────────────────────────────────────────────────────────────────────────

func TestProductRepository_List_All(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	a, b := sampleProduct(idA), sampleProduct(idB)

	mock.ExpectQuery("SELECT .+ FROM products ORDER BY").
		WillReturnRows(pgxmock.NewRows(columns).AddRow(productRow(a)...).AddRow(productRow(b)...))

	products, err := repo.List(context.Background(), repository.ProductFilter{})

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, a, products[0])
	assert.Equal(t, idB, products[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_ByCategory(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products WHERE category = \\$1").
		WithArgs("Sneakers").
		WillReturnRows(pgxmock.NewRows(columns))

	products, err := repo.List(context.Background(), repository.ProductFilter{Category: "Sneakers"})

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_QueryError(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products").WillReturnError(errors.New("conn closed"))

	_, err := repo.List(context.Background(), repository.ProductFilter{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list products")
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID / GetByIDs
// ─────────────────────────────────────────────────────────────────────────────

func TestProductRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct(idA)

	mock.ExpectQuery("SELECT .+ FROM products WHERE id").
		WithArgs(idA).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(productRow(p)...))

	got, err := repo.GetByID(context.Background(), idA)

	require.NoError(t, err)
	assert.Equal(t, &p, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products WHERE id").
		WithArgs(idA).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), idA)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_MalformedIDSkipsQuery(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Product not found", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByIDs_FiltersMalformed(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products WHERE id = ANY").
		WithArgs([]string{idA, idB}).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(productRow(sampleProduct(idA))...))

	products, err := repo.GetByIDs(context.Background(), []string{idA, "junk", idB})

	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByIDs_NoValidIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	products, err := repo.GetByIDs(context.Background(), []string{"junk"})

	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────────────────────────────────────
// Create / Update
// ─────────────────────────────────────────────────────────────────────────────

func TestProductRepository_Create_AssignsID(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct("")

	mock.ExpectExec("INSERT INTO products").
		WithArgs(pgxmock.AnyArg(), p.ProductName, p.Brand, p.Price, p.Category, pgxmock.AnyArg(), p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &p))
	assert.NotEmpty(t, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create_CheckViolation(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct(idA)

	mock.ExpectExec("INSERT INTO products").
		WillReturnError(&pgconn.PgError{
			Code:           "23514",
			TableName:      "products",
			ConstraintName: "products_price_positive",
		})

	err := repo.Create(context.Background(), &p)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Validation failed", appErr.Message)
	assert.Equal(t, []string{"products violates constraint products_price_positive"}, appErr.Details)
}

func TestProductRepository_Create_OtherError(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct(idA)

	mock.ExpectExec("INSERT INTO products").WillReturnError(errors.New("disk full"))

	err := repo.Create(context.Background(), &p)

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "insert product")
}

func TestProductRepository_Update_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct(idA)

	mock.ExpectExec("UPDATE products").
		WithArgs(p.ProductName, p.Brand, p.Price, p.Category, pgxmock.AnyArg(), p.UpdatedAt, p.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(context.Background(), &p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	p := sampleProduct(idA)

	mock.ExpectExec("UPDATE products").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.Update(context.Background(), &p), apperrors.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete / DeleteMany
// ─────────────────────────────────────────────────────────────────────────────

func TestProductRepository_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec("DELETE FROM products WHERE id = \\$1").
		WithArgs(idA).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM products WHERE id = \\$1").
		WithArgs(idB).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), idA))
	assert.ErrorIs(t, repo.Delete(context.Background(), idB), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_DeleteMany(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec("DELETE FROM products WHERE id = ANY").
		WithArgs([]string{idA, idB}).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	n, err := repo.DeleteMany(context.Background(), []string{idA, idB, "junk"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_DeleteMany_NoValidIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	n, err := repo.DeleteMany(context.Background(), []string{"junk"})

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────────────────────────────────────
// Migrations
// ─────────────────────────────────────────────────────────────────────────────

func TestMigrations_UpFilesPresent(t *testing.T) {
	files, err := fs.Glob(Migrations(), "*.up.sql")

	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_products.up.sql", "002_products_category_index.up.sql"}, files)
}
