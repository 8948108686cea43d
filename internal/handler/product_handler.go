package handler

import (
	"net/http"
	"strings"

	"trendyshop/internal/model"
	"trendyshop/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products. With ?ids=a,b it returns those products,
// otherwise a page filtered by ?search=.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("ids"); raw != "" {
		h.listByIDs(w, r, raw)
		return
	}

	page, ok := queryInt(w, r, "page", h.logger)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", h.logger)
	if !ok {
		return
	}

	result, err := h.service.List(r.Context(), r.URL.Query().Get("search"), page, limit)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if result.Products == nil {
		result.Products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ProductHandler) listByIDs(w http.ResponseWriter, r *http.Request, raw string) {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := uuid.Parse(p)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidID, "invalid product ID format", h.logger)
			return
		}
		ids = append(ids, id)
	}

	products, err := h.service.GetByIDs(r.Context(), ids)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// GetByCategory handles GET /api/products/category/{category}.
func (h *ProductHandler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetByCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetByName handles GET /api/products/category/{category}/{slug}.
func (h *ProductHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByName(r.Context(), r.PathValue("category"), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{id}. Only the fields present in the body
// change.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.UpdateProductRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	product, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}
