package router

import (
	"net/http"

	"trendyshop/internal/handler"
	"trendyshop/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Product *handler.ProductHandler
	Order   *handler.OrderHandler
	User    *handler.UserHandler
	Admin   *handler.AdminHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// users resolves callers for the staff-only routes.
func New(h Handlers, users middleware.UserLookup, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	user := middleware.RequireUser(logger)
	staff := func(next http.HandlerFunc) http.Handler {
		return user(middleware.RequireStaff(users, logger)(next))
	}
	authed := func(next http.HandlerFunc) http.Handler {
		return user(next)
	}

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	mux.HandleFunc("GET /api/products", h.Product.List)
	mux.HandleFunc("GET /api/products/{id}", h.Product.GetByID)
	mux.HandleFunc("GET /api/products/category/{category}", h.Product.GetByCategory)
	mux.HandleFunc("GET /api/products/category/{category}/{slug}", h.Product.GetByName)
	mux.Handle("POST /api/products", staff(h.Product.Create))
	mux.Handle("PUT /api/products/{id}", staff(h.Product.Update))
	mux.Handle("DELETE /api/products/{id}", staff(h.Product.Delete))

	mux.Handle("POST /api/orders", authed(h.Order.Create))
	mux.Handle("GET /api/orders", authed(h.Order.ListAll))
	mux.Handle("GET /api/orders/{userId}", authed(h.Order.ListByUser))
	mux.Handle("PATCH /api/orders/{id}/status", authed(h.Order.UpdateStatus))
	mux.Handle("DELETE /api/orders/{id}", authed(h.Order.Delete))

	mux.HandleFunc("POST /api/users", h.User.Register)
	mux.Handle("GET /api/users", staff(h.User.List))
	mux.Handle("GET /api/users/me", authed(h.User.Me))
	mux.Handle("GET /api/users/wishlist", authed(h.User.Wishlist))
	mux.Handle("POST /api/users/wishlist", authed(h.User.AddToWishlist))
	mux.Handle("DELETE /api/users/wishlist/{productId}", authed(h.User.RemoveFromWishlist))
	mux.Handle("GET /api/users/{id}", authed(h.User.GetByID))

	mux.Handle("GET /api/admin/stats", staff(h.Admin.Stats))
	mux.Handle("GET /api/admin/orders", staff(h.Admin.LatestOrders))
	mux.Handle("PATCH /api/admin/users/{id}/promote", staff(h.Admin.Promote))
	mux.Handle("PATCH /api/admin/users/{id}/demote", staff(h.Admin.Demote))
	mux.Handle("DELETE /api/admin/users/{id}", staff(h.Admin.DeleteUser))

	// Apply middleware in order: RequestID -> Recovery -> Logging -> CORS -> APIKeyAuth
	var handler http.Handler = mux
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
