package service

import (
	"context"

	"trendyshop/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue management.
type ProductService interface {
	// List retrieves a page of products whose name matches search.
	List(ctx context.Context, search string, page, limit int) (*model.ProductPage, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// GetByCategory retrieves every product in a category.
	GetByCategory(ctx context.Context, category string) ([]model.Product, error)

	// GetByName finds a product from its category and dash-separated name slug.
	GetByName(ctx context.Context, category, slug string) (*model.Product, error)

	// Create adds a product with its color variants.
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)

	// Update changes the fields present in req.
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error)

	// Delete removes a product.
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderService defines operations for order placement and management.
type OrderService interface {
	// PlaceOrder prices, discounts and stores an order for userID, reserving
	// stock and accruing loyalty coupons in a single transaction.
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.Order, error)

	// GetByID retrieves an order by its ID with all items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves every order of a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// ListAll retrieves a page of orders, optionally filtered by status.
	ListAll(ctx context.Context, status string, page, limit int) (*model.OrderPage, error)

	// Latest retrieves a fixed-size page of the newest orders with user names.
	Latest(ctx context.Context, page int) ([]model.Order, error)

	// UpdateStatus sets the status of an order.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error)

	// Delete removes an order.
	Delete(ctx context.Context, id uuid.UUID) error
}

// StatsService defines the admin dashboard aggregation.
type StatsService interface {
	// AggregateStats sums sales per day or per month and reports overall totals.
	AggregateStats(ctx context.Context, period string) (*model.AdminStats, error)
}

// UserService defines operations for account management.
type UserService interface {
	// Register creates a customer account.
	Register(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)

	// GetByID retrieves a user with their coupons.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// SetWorker grants or revokes the worker role.
	SetWorker(ctx context.Context, id uuid.UUID, worker bool) (*model.User, error)

	// Delete removes a user. Owners cannot be deleted.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns a fixed-size page of non-owner accounts.
	List(ctx context.Context, page int) (*model.UserPage, error)

	// Wishlist returns the product IDs a user has saved.
	Wishlist(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// AddToWishlist saves a product. Saving it twice is rejected.
	AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error

	// RemoveFromWishlist drops a product from the wishlist.
	RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error
}
