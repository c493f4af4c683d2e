package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"
)

// ProductRequest is the create/replace payload. All six fields are
// required; materials and image_urls may be empty lists but must be present
// (their absence is caught by the service's nil check).
type ProductRequest struct {
	SKU         string           `json:"sku" validate:"required"`
	ProductName string           `json:"product_name" validate:"required"`
	CategoryID  int64            `json:"category_id" validate:"required,gt=0"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Materials   []int64          `json:"materials"`
	ImageURLs   []string         `json:"image_urls"`
}

// CreateResponse is returned after a successful create
type CreateResponse struct {
	ProductID int64  `json:"product_id"`
	Message   string `json:"message"`
}

// MessageResponse is returned by replace and delete
type MessageResponse struct {
	Message string `json:"message"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/statistics/highest-price", h.HighestPricePerCategory)
		r.Get("/statistics/price-range", h.PriceRange)
		r.Get("/statistics/no-media", h.WithoutMedia)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Replace)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.GetAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id}
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	productID, err := h.productService.Create(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", productID))
	middleware.RespondWithJSON(w, http.StatusCreated, CreateResponse{
		ProductID: productID,
		Message:   "Product and materials added successfully",
	})
}

// Replace handles PUT /api/products/{id}
func (h *ProductHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	if err := h.productService.Replace(r.Context(), id, input); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.logger.Info("Product replaced", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{
		Message: "Product and materials updated successfully",
	})
}

// Delete handles DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{
		Message: "Product deleted successfully",
	})
}

// HighestPricePerCategory handles GET /api/products/statistics/highest-price
func (h *ProductHandler) HighestPricePerCategory(w http.ResponseWriter, r *http.Request) {
	result, err := h.productService.HighestPricePerCategory(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// PriceRange handles GET /api/products/statistics/price-range
func (h *ProductHandler) PriceRange(w http.ResponseWriter, r *http.Request) {
	result, err := h.productService.PriceHistogram(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// WithoutMedia handles GET /api/products/statistics/no-media
func (h *ProductHandler) WithoutMedia(w http.ResponseWriter, r *http.Request) {
	result, err := h.productService.ProductsWithoutMedia(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

func (h *ProductHandler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *ProductHandler) decodeProductRequest(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var req ProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return service.ProductInput{}, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return service.ProductInput{}, false
	}

	return service.ProductInput{
		SKU:         req.SKU,
		ProductName: req.ProductName,
		CategoryID:  req.CategoryID,
		Price:       *req.Price,
		Materials:   req.Materials,
		ImageURLs:   req.ImageURLs,
	}, true
}

// respondServiceError maps the error taxonomy onto HTTP status codes
func (h *ProductHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrDuplicateSKU):
		middleware.RespondWithError(w, http.StatusConflict, repository.ErrDuplicateSKU.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, repository.ErrProductNotFound.Error())
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, repository.ErrCategoryNotFound.Error())
	case errors.Is(err, repository.ErrMaterialNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, repository.ErrMaterialNotFound.Error())
	default:
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
