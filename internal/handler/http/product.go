package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kaifgrit/Rifakat/internal/domain"
	"github.com/kaifgrit/Rifakat/internal/service"
	"github.com/kaifgrit/Rifakat/pkg/httputil"
	"github.com/kaifgrit/Rifakat/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ColorRequest is one color of a product request. ImageURL is accepted from
// older admin clients that sent a single image.
type ColorRequest struct {
	ColorName    string   `json:"colorName" validate:"omitempty,max=100"`
	ColorHexCode string   `json:"colorHexCode" validate:"omitempty,hexcolor"`
	ImageURLs    []string `json:"imageUrls" validate:"omitempty,dive,http_url"`
	ImageURL     string   `json:"imageUrl" validate:"omitempty,http_url"`
	Sizes        []string `json:"sizes" validate:"omitempty,dive,notblank"`
}

// CreateProductRequest is the JSON request body for creating a product.
// Presence of the required fields is checked by the service so a missing
// field is reported with the full list of required ones.
type CreateProductRequest struct {
	ProductName string         `json:"productName" validate:"omitempty,max=200"`
	Brand       string         `json:"brand" validate:"omitempty,max=100"`
	Price       float64        `json:"price" validate:"omitempty,gt=0"`
	Category    string         `json:"category" validate:"omitempty,max=100"`
	Colors      []ColorRequest `json:"colors" validate:"omitempty,dive"`
}

// UpdateProductRequest is the JSON request body for updating a product.
// Omitted fields are left unchanged.
type UpdateProductRequest struct {
	ProductName *string        `json:"productName" validate:"omitempty,max=200"`
	Brand       *string        `json:"brand" validate:"omitempty,max=100"`
	Price       *float64       `json:"price"`
	Category    *string        `json:"category" validate:"omitempty,max=100"`
	Colors      []ColorRequest `json:"colors" validate:"omitempty,dive"`
}

// BatchDeleteRequest is the JSON request body for a batch delete.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BatchDeleteResponse reports how many products a batch delete removed.
type BatchDeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

func colorInputs(colors []ColorRequest) []domain.ColorInput {
	if colors == nil {
		return nil
	}
	out := make([]domain.ColorInput, len(colors))
	for i, c := range colors {
		out[i] = domain.ColorInput{
			ColorName:    c.ColorName,
			ColorHexCode: c.ColorHexCode,
			ImageURLs:    c.ImageURLs,
			ImageURL:     c.ImageURL,
			Sizes:        c.Sizes,
		}
	}
	return out
}

// --- Handlers ---

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	httputil.WriteJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &service.CreateProductInput{
		ProductName: req.ProductName,
		Brand:       req.Brand,
		Price:       req.Price,
		Category:    req.Category,
		Colors:      colorInputs(req.Colors),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), &service.UpdateProductInput{
		ProductName: req.ProductName,
		Brand:       req.Brand,
		Price:       req.Price,
		Category:    req.Category,
		Colors:      colorInputs(req.Colors),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Product and associated images removed")
}

// BatchDeleteProducts handles DELETE /api/products/batch
func (h *ProductHandler) BatchDeleteProducts(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req BatchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// A body whose ids is not a list gets the same answer as an empty one.
		httputil.WriteError(w, r, service.ErrEmptyBatch, h.logger)
		return
	}

	res, err := h.service.BatchDeleteProducts(r.Context(), req.IDs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BatchDeleteResponse{
		Message:      fmt.Sprintf("Successfully deleted %d product(s) and associated images.", res.DeletedCount),
		DeletedCount: res.DeletedCount,
	})
}
