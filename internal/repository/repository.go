package repository

import (
	"context"
	"time"

	"trendyshop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DB is the subset of *pgxpool.Pool used by the repositories.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier is satisfied by both DB and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves products whose name matches search (case-insensitive),
	// ordered by name. An empty search matches everything.
	List(ctx context.Context, search string, limit, offset int) ([]model.Product, error)

	// Count returns the number of products matching search.
	Count(ctx context.Context, search string) (int, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// GetByCategory retrieves every product in a category.
	GetByCategory(ctx context.Context, category string) ([]model.Product, error)

	// GetByName retrieves the product in category with the given name,
	// ignoring case. A missing product yields nil, nil.
	GetByName(ctx context.Context, category, name string) (*model.Product, error)

	// Create inserts a product together with its color variants.
	Create(ctx context.Context, product *model.Product) error

	// Update rewrites a product's fields and, when replaceColors is set, its
	// color variants. It reports whether the product existed.
	Update(ctx context.Context, product *model.Product, replaceColors bool) (bool, error)

	// Delete removes a product and its color variants. It reports whether a
	// row was deleted.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// ReserveStock decrements the stock of one color variant within the
	// provided transaction. It never lets stock drop below zero.
	ReserveStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, color string, quantity int) error
}

// UserRepository defines the interface for account and coupon data access.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields model.ErrEmailTaken.
	Create(ctx context.Context, user *model.User) error

	// GetByID retrieves a user with their coupons.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetForUpdate retrieves a user with their coupons and locks the user row
	// until the transaction ends.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.User, error)

	// MarkCouponUsed flags an unused coupon as used within the provided transaction.
	MarkCouponUsed(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) error

	// AddSpent increases the user's cumulative spend and returns the new total.
	AddSpent(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)

	// InsertCoupons stores newly issued coupons, skipping tiers the user
	// already holds. It returns the number of rows inserted.
	InsertCoupons(ctx context.Context, tx pgx.Tx, coupons []model.Coupon) (int, error)

	// SetWorker sets or clears the worker role.
	SetWorker(ctx context.Context, id uuid.UUID, worker bool) (*model.User, error)

	// Delete removes a user and their coupons. It reports whether a row was deleted.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// SumTotalSpent returns the cumulative spend across all users.
	SumTotalSpent(ctx context.Context) (decimal.Decimal, error)

	// List retrieves a page of non-owner accounts, newest first, with coupons.
	List(ctx context.Context, limit, offset int) ([]model.User, error)

	// CountCustomers returns the number of non-owner accounts.
	CountCustomers(ctx context.Context) (int, error)

	// Wishlist returns the product IDs on a user's wishlist, oldest first.
	Wishlist(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// AddToWishlist stores productID on the wishlist. It reports false when
	// the product was already there and yields model.ErrProductNotFound for
	// an unknown product.
	AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (bool, error)

	// RemoveFromWishlist drops productID from the wishlist. Removing an
	// absent entry is not an error.
	RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves every order of a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// List retrieves a page of orders, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// Count returns the number of orders, optionally restricted to one status.
	Count(ctx context.Context, status *model.OrderStatus) (int, error)

	// Latest retrieves a page of orders, newest first, with the ordering
	// user's name filled in.
	Latest(ctx context.Context, limit, offset int) ([]model.Order, error)

	// UpdateStatus changes an order's status and returns the updated order.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)

	// Delete removes an order. It reports whether a row was deleted.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// SalesBuckets sums order totals created at or after since, grouped by the
	// given PostgreSQL to_char layout in UTC, ordered by bucket.
	SalesBuckets(ctx context.Context, since time.Time, layout string) ([]model.SalesBucket, error)
}
