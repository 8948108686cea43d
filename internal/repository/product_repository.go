package repository

import (
	"context"
	"errors"
	"fmt"

	"trendyshop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, price, category, description, images, created_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db DB, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// List retrieves products matching search with pagination support.
func (r *productRepository) List(ctx context.Context, search string, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`

	products, err := r.queryProducts(ctx, query, search, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Str("search", search).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, err
	}

	return products, nil
}

// Count returns the number of products matching search.
func (r *productRepository) Count(ctx context.Context, search string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM products
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
	`

	var count int
	if err := r.db.QueryRow(ctx, query, search).Scan(&count); err != nil {
		r.logger.Error().Err(err).Str("search", search).Msg("failed to count products")
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	products, err := r.queryProducts(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, err
	}

	if len(products) == 0 {
		r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, nil
	}

	return &products[0], nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY name, id
	`

	products, err := r.queryProducts(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, err
	}

	return products, nil
}

// GetByCategory retrieves every product in a category.
func (r *productRepository) GetByCategory(ctx context.Context, category string) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE category = $1
		ORDER BY name, id
	`

	products, err := r.queryProducts(ctx, query, category)
	if err != nil {
		r.logger.Error().Err(err).Str("category", category).Msg("failed to query products by category")
		return nil, err
	}

	return products, nil
}

// GetByName retrieves the oldest product in category whose name matches
// name case-insensitively.
func (r *productRepository) GetByName(ctx context.Context, category, name string) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE category = $1 AND lower(name) = lower($2)
		ORDER BY created_at, id
		LIMIT 1
	`

	products, err := r.queryProducts(ctx, query, category, name)
	if err != nil {
		r.logger.Error().Err(err).
			Str("category", category).
			Str("name", name).
			Msg("failed to query product by name")
		return nil, err
	}

	if len(products) == 0 {
		return nil, nil
	}

	return &products[0], nil
}

// Create inserts a product together with its color variants in one transaction.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if product.Images == nil {
		product.Images = []string{}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO products (id, name, price, category, description, images, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, product.ID, product.Name, product.Price, product.Category, product.Description, product.Images, product.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	if err := r.insertColors(ctx, tx, product); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to commit product")
		return fmt.Errorf("failed to commit product: %w", err)
	}

	r.logger.Debug().
		Str("product_id", product.ID.String()).
		Int("colors", len(product.Colors)).
		Msg("product created successfully")

	return nil
}

// Update rewrites a product's fields. When replaceColors is set the existing
// color variants are swapped for product.Colors. It reports whether the
// product existed.
func (r *productRepository) Update(ctx context.Context, product *model.Product, replaceColors bool) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if product.Images == nil {
		product.Images = []string{}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET name = $2, price = $3, category = $4, description = $5, images = $6
		WHERE id = $1
	`, product.ID, product.Name, product.Price, product.Category, product.Description, product.Images)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return false, fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if replaceColors {
		if _, err := tx.Exec(ctx, `DELETE FROM product_colors WHERE product_id = $1`, product.ID); err != nil {
			r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to clear product colors")
			return false, fmt.Errorf("failed to clear product colors: %w", err)
		}
		if err := r.insertColors(ctx, tx, product); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to commit product update")
		return false, fmt.Errorf("failed to commit product update: %w", err)
	}

	return true, nil
}

// Delete removes a product and its color variants. Placed orders keep their
// line items. It reports whether a row was deleted.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *productRepository) insertColors(ctx context.Context, tx pgx.Tx, product *model.Product) error {
	batch := &pgx.Batch{}
	for _, c := range product.Colors {
		batch.Queue(`INSERT INTO product_colors (product_id, color, quantity) VALUES ($1, $2, $3)`,
			product.ID, c.Color, c.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range product.Colors {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			r.logger.Error().
				Err(err).
				Str("product_id", product.ID.String()).
				Str("color", product.Colors[i].Color).
				Msg("failed to create product color")
			return fmt.Errorf("failed to create product color: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to create product colors: %w", err)
	}

	return nil
}

// ReserveStock decrements the stock of one color variant within tx.
func (r *productRepository) ReserveStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, color string, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}
	// No variant can hold more than an INTEGER column allows.
	if quantity > model.MaxQuantity {
		return model.ErrInsufficientStock
	}

	tag, err := tx.Exec(ctx, `
		UPDATE product_colors
		SET quantity = quantity - $3
		WHERE product_id = $1 AND color = $2 AND quantity >= $3
	`, productID, color, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", productID.String()).
			Str("color", color).
			Msg("failed to reserve stock")
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing was updated: work out why without touching stock.
	var productExists, colorExists bool
	err = tx.QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM products WHERE id = $1),
			EXISTS (SELECT 1 FROM product_colors WHERE product_id = $1 AND color = $2)
	`, productID, color).Scan(&productExists, &colorExists)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to diagnose stock reservation")
		return fmt.Errorf("failed to diagnose stock reservation: %w", err)
	}

	switch {
	case !productExists:
		return model.ErrProductNotFound
	case !colorExists:
		return model.ErrColorNotFound
	default:
		r.logger.Warn().
			Str("product_id", productID.String()).
			Str("color", color).
			Int("requested", quantity).
			Msg("insufficient stock")
		return model.ErrInsufficientStock
	}
}

// queryProducts runs a product query and attaches color variants.
func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Description, &p.Images, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Colors = []model.ColorVariant{}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := attachColors(ctx, r.db, products); err != nil {
		return nil, err
	}

	return products, nil
}

// attachColors loads the color variants of products in a single query.
func attachColors(ctx context.Context, q querier, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(products))
	index := make(map[uuid.UUID]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := q.Query(ctx, `
		SELECT product_id, color, quantity
		FROM product_colors
		WHERE product_id = ANY($1)
		ORDER BY product_id, color
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query product colors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID uuid.UUID
		var c model.ColorVariant
		if err := rows.Scan(&productID, &c.Color, &c.Quantity); err != nil {
			return fmt.Errorf("failed to scan product color: %w", err)
		}
		i, ok := index[productID]
		if !ok {
			return errors.New("product color returned for unknown product")
		}
		products[i].Colors = append(products[i].Colors, c)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating product colors: %w", err)
	}

	return nil
}
