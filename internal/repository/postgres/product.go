package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kaifgrit/Rifakat/internal/domain"
	"github.com/kaifgrit/Rifakat/internal/repository"
	"github.com/kaifgrit/Rifakat/pkg/database"
	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema migrations for database.RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

const productColumns = `id, product_name, brand, price, category, colors, created_at, updated_at`

// SQLSTATE codes surfaced as validation errors.
const (
	checkViolation   = "23514"
	notNullViolation = "23502"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
// Colors are stored as a JSONB array.
type ProductRepository struct {
	db database.DBTX
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns products, optionally restricted to one category, oldest first.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (_ []domain.Product, err error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at, id`
	var args []any
	if filter.Category != "" {
		query = `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY created_at, id`
		args = append(args, filter.Category)
	}

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "SELECT", "products.list")
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return scanProducts(rows)
}

// GetByID retrieves a product by its ID. Ids that are not UUIDs are
// reported as not found.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	if _, parseErr := uuid.Parse(id); parseErr != nil {
		return nil, apperrors.NotFound("Product")
	}

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "SELECT", "products.get")
	defer func() { end(err) }()

	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("Product")
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// GetByIDs returns the products with the given ids.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) (_ []domain.Product, err error) {
	valid := validIDs(ids)
	if len(valid) == 0 {
		return []domain.Product{}, nil
	}

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "SELECT", "products.get_many")
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY created_at, id`, valid)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	return scanProducts(rows)
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	colors, err := json.Marshal(p.Colors)
	if err != nil {
		return fmt.Errorf("marshal colors: %w", err)
	}

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "INSERT", "products.create")
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, `
		INSERT INTO products (id, product_name, brand, price, category, colors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID,
		p.ProductName,
		p.Brand,
		p.Price,
		p.Category,
		colors,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert product", err)
	}
	return nil
}

// Update replaces every mutable column of an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	if _, parseErr := uuid.Parse(p.ID); parseErr != nil {
		return apperrors.NotFound("Product")
	}
	colors, err := json.Marshal(p.Colors)
	if err != nil {
		return fmt.Errorf("marshal colors: %w", err)
	}

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "UPDATE", "products.update")
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, `
		UPDATE products
		SET product_name = $1, brand = $2, price = $3, category = $4, colors = $5, updated_at = $6
		WHERE id = $7`,
		p.ProductName,
		p.Brand,
		p.Price,
		p.Category,
		colors,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return mapWriteError("update product", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Product")
	}
	return nil
}

// Delete removes a product by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	if _, parseErr := uuid.Parse(id); parseErr != nil {
		return apperrors.NotFound("Product")
	}

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "DELETE", "products.delete")
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Product")
	}
	return nil
}

// DeleteMany removes the products with the given ids.
func (r *ProductRepository) DeleteMany(ctx context.Context, ids []string) (_ int64, err error) {
	valid := validIDs(ids)
	if len(valid) == 0 {
		return 0, nil
	}

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "DELETE", "products.delete_many")
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = ANY($1)`, valid)
	if err != nil {
		return 0, fmt.Errorf("delete products: %w", err)
	}
	return ct.RowsAffected(), nil
}

func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p          domain.Product
		colorsJSON []byte
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(
		&p.ID,
		&p.ProductName,
		&p.Brand,
		&p.Price,
		&p.Category,
		&colorsJSON,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(colorsJSON, &p.Colors); err != nil {
		return nil, fmt.Errorf("unmarshal colors: %w", err)
	}
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	return &p, nil
}

// mapWriteError turns constraint violations into validation errors so they
// reach clients as 400 "Validation failed".
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case checkViolation:
			return apperrors.Validation(fmt.Sprintf("%s violates constraint %s", pgErr.TableName, pgErr.ConstraintName))
		case notNullViolation:
			return apperrors.Validation(fmt.Sprintf("%s is required", pgErr.ColumnName))
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
