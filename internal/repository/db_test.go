package repository

import (
	"context"
	"testing"
	"time"

	"trendyshop/internal/database"
	"trendyshop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container and applies the service schema.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedUser inserts a user with the given spend.
func seedUser(t *testing.T, pool *pgxpool.Pool, name string, spent int64) model.User {
	t.Helper()

	now := time.Now().UTC()
	u := model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        name + "-" + uuid.NewString()[:8] + "@example.com",
		PasswordHash: "hash",
		TotalSpent:   decimal.NewFromInt(spent),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, NewUserRepository(pool, zerolog.Nop()).Create(context.Background(), &u))
	return u
}

// seedProduct inserts a product with the given color stock.
func seedProduct(t *testing.T, pool *pgxpool.Pool, name, category string, price int64, colors ...model.ColorVariant) model.Product {
	t.Helper()

	p := model.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.NewFromInt(price),
		Category:  category,
		Images:    []string{"https://img.example.com/" + name + ".jpg"},
		Colors:    colors,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, NewProductRepository(pool, zerolog.Nop()).Create(context.Background(), &p))
	return p
}

// fakeRow implements pgx.Row.
type fakeRow struct {
	scanFn func(dest ...any) error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return nil
}

// fakeTx implements the parts of pgx.Tx the repositories call. Unimplemented
// methods panic through the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return f.execFn(ctx, sql, args...)
}

func (f *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.queryRowFn(ctx, sql, args...)
}

// fakeDB implements DB for tests that never reach PostgreSQL.
type fakeDB struct {
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, pgx.ErrTxClosed
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return f.execFn(ctx, sql, args...)
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrTxClosed
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.queryRowFn(ctx, sql, args...)
}
