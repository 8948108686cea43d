package repository

import (
	"context"
	"errors"
	"fmt"

	"trendyshop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const userColumns = `id, name, email, password_hash, total_spent, is_owner, is_worker, created_at, updated_at`

// PostgreSQL error codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// wishlistProductFK is the default name of user_wishlist's product foreign key.
const wishlistProductFK = "user_wishlist_product_id_fkey"

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db DB, logger zerolog.Logger) UserRepository {
	return &userRepository{
		db:     db,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.TotalSpent,
		user.IsOwner, user.IsWorker, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return model.ErrEmailTaken
		}
		r.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug().Str("user_id", user.ID.String()).Msg("user created successfully")
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.getUser(ctx, r.db, r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to query user")
		return nil, err
	}
	if user == nil {
		r.logger.Debug().Str("user_id", id.String()).Msg("user not found")
	}

	return user, nil
}

func (r *userRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	user, err := r.getUser(ctx, tx, tx.QueryRow(ctx, query, id))
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to lock user")
		return nil, err
	}

	return user, nil
}

func (r *userRepository) MarkCouponUsed(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `UPDATE user_coupons SET used = TRUE WHERE id = $1 AND used = FALSE`, couponID)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to mark coupon used")
		return fmt.Errorf("failed to mark coupon used: %w", err)
	}

	if tag.RowsAffected() != 1 {
		return fmt.Errorf("coupon %s is missing or already used", couponID)
	}

	return nil
}

func (r *userRepository) AddSpent(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.QueryRow(ctx, `
		UPDATE users
		SET total_spent = total_spent + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING total_spent
	`, userID, amount).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, model.ErrUserNotFound
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to accrue spend")
		return decimal.Zero, fmt.Errorf("failed to accrue spend: %w", err)
	}

	return total, nil
}

func (r *userRepository) InsertCoupons(ctx context.Context, tx pgx.Tx, coupons []model.Coupon) (int, error) {
	if len(coupons) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO user_coupons (id, user_id, code, discount, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, discount) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, c := range coupons {
		batch.Queue(query, c.ID, c.UserID, c.Code, c.Discount, c.Used, c.CreatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := range coupons {
		tag, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("user_id", coupons[i].UserID.String()).
				Str("discount", coupons[i].Discount.String()).
				Msg("failed to insert coupon")
			return 0, fmt.Errorf("failed to insert coupon: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	r.logger.Debug().Int("count", inserted).Msg("coupons inserted")
	return inserted, nil
}

func (r *userRepository) SetWorker(ctx context.Context, id uuid.UUID, worker bool) (*model.User, error) {
	query := `
		UPDATE users
		SET is_worker = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := r.getUser(ctx, r.db, r.db.QueryRow(ctx, query, id, worker))
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to update worker role")
		return nil, err
	}

	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to delete user")
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *userRepository) SumTotalSpent(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_spent), 0) FROM users`).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to sum total spent")
		return decimal.Zero, fmt.Errorf("failed to sum total spent: %w", err)
	}

	return total, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE NOT is_owner
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to query users")
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.TotalSpent,
			&u.IsOwner, &u.IsWorker, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Coupons = []model.Coupon{}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	if err := attachCoupons(ctx, r.db, users); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) CountCustomers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE NOT is_owner`).Scan(&count); err != nil {
		r.logger.Error().Err(err).Msg("failed to count users")
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

func (r *userRepository) Wishlist(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT product_id
		FROM user_wishlist
		WHERE user_id = $1
		ORDER BY added_at, product_id
	`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query wishlist")
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan wishlist: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}

	return ids, nil
}

func (r *userRepository) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_wishlist (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, userID, productID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			if pgErr.ConstraintName == wishlistProductFK {
				return false, model.ErrProductNotFound
			}
			return false, model.ErrUserNotFound
		}
		r.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to add wishlist entry")
		return false, fmt.Errorf("failed to add wishlist entry: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *userRepository) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_wishlist WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to remove wishlist entry")
		return fmt.Errorf("failed to remove wishlist entry: %w", err)
	}

	return nil
}

// getUser scans a user row and loads the user's coupons through q.
// A missing row yields nil, nil.
func (r *userRepository) getUser(ctx context.Context, q querier, row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.TotalSpent,
		&u.IsOwner, &u.IsWorker, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	coupons, err := loadCoupons(ctx, q, u.ID)
	if err != nil {
		return nil, err
	}
	u.Coupons = coupons

	return &u, nil
}

func loadCoupons(ctx context.Context, q querier, userID uuid.UUID) ([]model.Coupon, error) {
	rows, err := q.Query(ctx, `
		SELECT id, user_id, code, discount, used, created_at
		FROM user_coupons
		WHERE user_id = $1
		ORDER BY created_at, discount
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		var c model.Coupon
		if err := rows.Scan(&c.ID, &c.UserID, &c.Code, &c.Discount, &c.Used, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}

	return coupons, nil
}

// attachCoupons loads the coupons of users in a single query.
func attachCoupons(ctx context.Context, q querier, users []model.User) error {
	if len(users) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(users))
	index := make(map[uuid.UUID]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
		index[u.ID] = i
	}

	rows, err := q.Query(ctx, `
		SELECT id, user_id, code, discount, used, created_at
		FROM user_coupons
		WHERE user_id = ANY($1)
		ORDER BY user_id, created_at, discount
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c model.Coupon
		if err := rows.Scan(&c.ID, &c.UserID, &c.Code, &c.Discount, &c.Used, &c.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan coupon: %w", err)
		}
		i, ok := index[c.UserID]
		if !ok {
			return errors.New("coupon returned for unknown user")
		}
		users[i].Coupons = append(users[i].Coupons, c)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating coupons: %w", err)
	}

	return nil
}
