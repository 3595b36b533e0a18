package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kaifgrit/Rifakat/internal/domain"
	"github.com/kaifgrit/Rifakat/internal/event"
	"github.com/kaifgrit/Rifakat/internal/imagehost"
	"github.com/kaifgrit/Rifakat/internal/repository"
	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
)

// RequiredFields is reported when a create request lacks a required field.
var RequiredFields = []string{"productName", "price", "category", "colors (at least one)"}

// ImageDeleter removes hosted images by public id.
type ImageDeleter interface {
	Delete(ctx context.Context, publicIDs []string) (*imagehost.DeleteResult, error)
}

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo     repository.ProductRepository
	images   ImageDeleter
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewProductService creates a new product service. producer may be nil.
func NewProductService(repo repository.ProductRepository, images ImageDeleter, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		images:   images,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	ProductName string
	Brand       string
	Price       float64
	Category    string
	Colors      []domain.ColorInput
}

// UpdateProductInput holds the parameters for updating a product. Nil
// fields are left unchanged; a non-nil field is applied even when it holds
// a zero value, and the result is validated.
type UpdateProductInput struct {
	ProductName *string
	Brand       *string
	Price       *float64
	Category    *string
	Colors      []domain.ColorInput
}

// HasColors reports whether the update replaces the colors.
func (in *UpdateProductInput) HasColors() bool {
	return in.Colors != nil
}

// ListProducts returns every product, or only those in category when it is set.
func (s *ProductService) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.repo.List(ctx, repository.ProductFilter{Category: category})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// loadForWrite reads id with GetByIDs, which never goes through a cache, so
// writes start from the stored record.
func (s *ProductService) loadForWrite(ctx context.Context, id string) (*domain.Product, error) {
	products, err := s.repo.GetByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperrors.NotFound("Product")
	}
	return &products[0], nil
}

// CreateProduct validates, normalizes and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if input.ProductName == "" || input.Price == 0 || input.Category == "" || len(input.Colors) == 0 {
		return nil, apperrors.MissingFields(RequiredFields...)
	}

	colors, err := domain.NormalizeColors(input.Colors)
	if err != nil {
		return nil, err
	}

	now := s.now()
	product := &domain.Product{
		ProductName: input.ProductName,
		Brand:       input.Brand,
		Price:       input.Price,
		Category:    input.Category,
		Colors:      colors,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	// Publish event; errors are logged but do not fail the operation.
	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("category", product.Category),
		slog.Int("colors", len(product.Colors)),
	)
	return product, nil
}

// UpdateProduct applies the supplied fields to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.loadForWrite(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.HasColors() {
		colors, err := domain.NormalizeColors(input.Colors)
		if err != nil {
			return nil, err
		}
		product.Colors = colors
	}
	if input.ProductName != nil {
		product.ProductName = *input.ProductName
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	product.UpdatedAt = s.now()

	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)
	return product, nil
}
