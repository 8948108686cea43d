package handler

import (
	"net/http"

	"trendyshop/internal/model"
	"trendyshop/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler serves the staff dashboard and user management.
type AdminHandler struct {
	stats  service.StatsService
	orders service.OrderService
	users  service.UserService
	logger zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	stats service.StatsService,
	orders service.OrderService,
	users service.UserService,
	logger zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		stats:  stats,
		orders: orders,
		users:  users,
		logger: logger.With().Str("handler", "admin").Logger(),
	}
}

// Stats handles GET /api/admin/stats?period=days|months.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.AggregateStats(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// LatestOrders handles GET /api/admin/orders?page=.
func (h *AdminHandler) LatestOrders(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(w, r, "page", h.logger)
	if !ok {
		return
	}

	orders, err := h.orders.Latest(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// Promote handles PATCH /api/admin/users/{id}/promote.
func (h *AdminHandler) Promote(w http.ResponseWriter, r *http.Request) {
	h.setWorker(w, r, true)
}

// Demote handles PATCH /api/admin/users/{id}/demote.
func (h *AdminHandler) Demote(w http.ResponseWriter, r *http.Request) {
	h.setWorker(w, r, false)
}

func (h *AdminHandler) setWorker(w http.ResponseWriter, r *http.Request, worker bool) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	user, err := h.users.SetWorker(r.Context(), id, worker)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/admin/users/{id}.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}
