// Package integration runs the HTTP API against a real PostgreSQL container.
package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"trendyshop/internal/config"
	"trendyshop/internal/database"
	"trendyshop/internal/model"
	"trendyshop/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container, opens a pool with the service's
// pool settings and applies the embedded schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("trendyshop"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromConnString(ctx, connStr, config.DatabaseConfig{
		MaxConnections:  20,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProduct inserts a product with the given color stock.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, name string, price string, colors ...model.ColorVariant) model.Product {
	t.Helper()

	p := model.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Category:  "test",
		Images:    []string{},
		Colors:    colors,
		CreatedAt: time.Now().UTC(),
	}
	if err := repository.NewProductRepository(pool, zerolog.Nop()).Create(context.Background(), &p); err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return p
}

// SeedStaff inserts an owner account and returns its id.
func SeedStaff(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, name, email, password_hash, is_owner) VALUES ($1, $2, $3, $4, TRUE)`,
		id, "Owner", "owner-"+id.String()[:8]+"@example.com", "x",
	)
	if err != nil {
		t.Fatalf("failed to seed staff user: %v", err)
	}
	return id
}

// StockOf returns the current stock of one color of a product.
func StockOf(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID, color string) int {
	t.Helper()

	var qty int
	err := pool.QueryRow(context.Background(),
		`SELECT quantity FROM product_colors WHERE product_id = $1 AND color = $2`,
		productID, color,
	).Scan(&qty)
	if err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return qty
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"user_wishlist", "order_items", "orders", "product_colors", "products", "user_coupons", "users"}
	for _, table := range tables {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
