package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"catalog-api/internal/middleware"
	"catalog-api/internal/service"
)

// CatalogHandler serves the read-only category and material listings
type CatalogHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(productService service.ProductService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers the category and material routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/materials", h.ListMaterials)
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.productService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// ListMaterials handles GET /api/materials
func (h *CatalogHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.productService.ListMaterials(r.Context())
	if err != nil {
		h.logger.Error("Failed to list materials", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to fetch materials")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, materials)
}
