package handler

import (
	"net/http"

	"trendyshop/internal/model"
	"trendyshop/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserHandler handles account requests.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("handler", "user").Logger(),
	}
}

// Register handles POST /api/users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// GetByID handles GET /api/users/{id}.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// List handles GET /api/users for staff, fifteen accounts per page.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(w, r, "page", h.logger)
	if !ok {
		return
	}

	result, err := h.service.List(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if result.Users == nil {
		result.Users = []model.User{}
	}
	writeJSON(w, http.StatusOK, result)
}

// Wishlist handles GET /api/users/wishlist and returns the saved product IDs.
func (h *UserHandler) Wishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}

	ids, err := h.service.Wishlist(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if ids == nil {
		ids = []uuid.UUID{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// AddToWishlist handles POST /api/users/wishlist.
func (h *UserHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}

	var req model.WishlistRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidID, "invalid productId format", h.logger)
		return
	}

	if err := h.service.AddToWishlist(r.Context(), id, productID); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Product added to wishlist"})
}

// RemoveFromWishlist handles DELETE /api/users/wishlist/{productId}.
func (h *UserHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r, h.logger)
	if !ok {
		return
	}

	productID, ok := pathID(w, r, "productId", h.logger)
	if !ok {
		return
	}

	if err := h.service.RemoveFromWishlist(r.Context(), id, productID); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Product removed from wishlist"})
}
