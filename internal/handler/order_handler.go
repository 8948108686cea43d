package handler

import (
	"errors"
	"net/http"
	"strings"

	"trendyshop/internal/model"
	"trendyshop/internal/service"
	"trendyshop/internal/validator"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}

	var req model.OrderRequest
	if !decodeOrderRequest(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// ListByUser handles GET /api/orders/{userId}.
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", h.logger)
	if !ok {
		return
	}

	orders, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// ListAll handles GET /api/orders?status=&page=&limit=.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(w, r, "page", h.logger)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", h.logger)
	if !ok {
		return
	}

	result, err := h.service.ListAll(r.Context(), r.URL.Query().Get("status"), page, limit)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if result.Orders == nil {
		result.Orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, result)
}

// UpdateStatus handles PATCH /api/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.StatusUpdateRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Order deleted successfully"})
}

// decodeOrderRequest is decodeAndValidate with out-of-range item quantities
// reported as INVALID_QUANTITY.
func decodeOrderRequest(w http.ResponseWriter, r *http.Request, req *model.OrderRequest, logger zerolog.Logger) bool {
	if !decodeJSON(w, r, req, logger) {
		return false
	}

	if err := validate.Struct(req); err != nil {
		if isQuantityFailure(err) {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidQuantity, model.ErrInvalidQuantity.Message, logger)
			return false
		}
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, validator.Message(err), logger)
		return false
	}

	return true
}

func isQuantityFailure(err error) bool {
	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return false
	}
	for _, fe := range ve {
		if fe.Field() == "quantity" && strings.Contains(fe.Namespace(), ".items[") {
			return true
		}
	}
	return false
}
