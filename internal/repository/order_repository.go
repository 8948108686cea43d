package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trendyshop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const orderColumns = `o.id, o.user_id, o.coupon_code, o.discount, o.total_cost,
	o.first_name, o.last_name, o.phone, o.address, o.status, o.created_at, o.updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db DB, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, coupon_code, discount, total_cost,
			first_name, last_name, phone, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.CouponCode, order.Discount, order.TotalCost,
		order.FirstName, order.LastName, order.Phone, order.Address, string(order.Status),
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
// Item position follows slice order.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, position, product_id, color, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(query, item.ID, item.OrderID, i, item.ProductID, item.Color, item.Quantity, item.UnitPrice)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	orders, err := r.queryOrders(ctx, false, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, err
	}

	if len(orders) == 0 {
		r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, nil
	}

	return &orders[0], nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id
	`

	orders, err := r.queryOrders(ctx, false, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query user orders")
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		WHERE $1::text IS NULL OR o.status = $1
		ORDER BY o.created_at DESC, o.id
		LIMIT $2 OFFSET $3
	`

	orders, err := r.queryOrders(ctx, false, query, status, filter.Limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to query orders")
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) Count(ctx context.Context, status *model.OrderStatus) (int, error) {
	var s *string
	if status != nil {
		v := string(*status)
		s = &v
	}

	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE $1::text IS NULL OR status = $1`, s).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

func (r *orderRepository) Latest(ctx context.Context, limit, offset int) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `, COALESCE(u.name, '')
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id
		LIMIT $1 OFFSET $2
	`

	orders, err := r.queryOrders(ctx, true, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to query latest orders")
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	r.logger.Debug().Str("order_id", id.String()).Str("status", string(status)).Msg("order status updated")
	return r.GetByID(ctx, id)
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return false, fmt.Errorf("failed to delete order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) SalesBuckets(ctx context.Context, since time.Time, layout string) ([]model.SalesBucket, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', $2) AS bucket, SUM(total_cost)
		FROM orders
		WHERE created_at >= $1
		GROUP BY bucket
		ORDER BY bucket
	`, since, layout)
	if err != nil {
		r.logger.Error().Err(err).Str("layout", layout).Msg("failed to query sales buckets")
		return nil, fmt.Errorf("failed to query sales buckets: %w", err)
	}
	defer rows.Close()

	buckets := []model.SalesBucket{}
	for rows.Next() {
		var b model.SalesBucket
		if err := rows.Scan(&b.Bucket, &b.Total); err != nil {
			return nil, fmt.Errorf("failed to scan sales bucket: %w", err)
		}
		buckets = append(buckets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales buckets: %w", err)
	}

	return buckets, nil
}

// queryOrders runs an order query and attaches items. When withUserName is
// set the query must select the user's name as an extra trailing column.
func (r *orderRepository) queryOrders(ctx context.Context, withUserName bool, query string, args ...any) ([]model.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		var status string
		dest := []any{
			&o.ID, &o.UserID, &o.CouponCode, &o.Discount, &o.TotalCost,
			&o.FirstName, &o.LastName, &o.Phone, &o.Address, &status, &o.CreatedAt, &o.UpdatedAt,
		}
		if withUserName {
			dest = append(dest, &o.UserName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Status = model.OrderStatus(status)
		o.Items = []model.OrderItem{}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := attachItems(ctx, r.db, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachItems loads the items of orders in a single query, in placement order.
func attachItems(ctx context.Context, q querier, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, color, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Color, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		i, ok := index[item.OrderID]
		if !ok {
			return errors.New("order item returned for unknown order")
		}
		orders[i].Items = append(orders[i].Items, item)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}
