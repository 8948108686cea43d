package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trendyshop/internal/model"
	"trendyshop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves a page of products with the default page size of 10,
// capped at 100.
func (s *productService) List(ctx context.Context, search string, page, limit int) (*model.ProductPage, error) {
	page, limit = normalisePage(page, limit)
	search = strings.TrimSpace(search)

	total, err := s.productRepo.Count(ctx, search)
	if err != nil {
		s.logger.Error().Err(err).Str("search", search).Msg("failed to count products")
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	products, err := s.productRepo.List(ctx, search, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error().Err(err).
			Int("page", page).
			Int("limit", limit).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("page", page).
		Int("limit", limit).
		Msg("retrieved products")

	return &model.ProductPage{
		Products:    products,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
	}, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (s *productService) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to get products by IDs")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("requested", len(ids)).
		Int("found", len(products)).
		Msg("retrieved products by IDs")

	return products, nil
}

func (s *productService) GetByCategory(ctx context.Context, category string) ([]model.Product, error) {
	products, err := s.productRepo.GetByCategory(ctx, category)
	if err != nil {
		s.logger.Error().Err(err).Str("category", category).Msg("failed to get products by category")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// Create adds a product. Color names must be unique within the product.
func (s *productService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.NewValidationError("product request is required")
	}
	if req.Price.IsNegative() || req.Price.GreaterThan(model.MaxAmount) {
		return nil, model.NewValidationError("price must be between 0 and " + model.MaxAmount.String())
	}
	if len(req.Colors) == 0 {
		return nil, model.NewValidationError("at least one color is required")
	}

	colors, err := normaliseColors(req.Colors)
	if err != nil {
		return nil, err
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}

	product := &model.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		Images:      images,
		Colors:      colors,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("name", product.Name).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("category", product.Category).
		Int("colors", len(colors)).
		Msg("product created")

	return product, nil
}

// GetByName finds a product from its category and URL slug. Dashes in the
// slug stand for spaces.
func (s *productService) GetByName(ctx context.Context, category, slug string) (*model.Product, error) {
	name := strings.TrimSpace(strings.ReplaceAll(slug, "-", " "))
	if name == "" {
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByName(ctx, category, name)
	if err != nil {
		s.logger.Error().Err(err).Str("category", category).Str("slug", slug).Msg("failed to get product by name")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("category", category).Str("slug", slug).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Update applies the fields present in req to an existing product.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.NewValidationError("product request is required")
	}

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		if req.Price.IsNegative() || req.Price.GreaterThan(model.MaxAmount) {
			return nil, model.NewValidationError("price must be between 0 and " + model.MaxAmount.String())
		}
		product.Price = *req.Price
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	if product.Name == "" || product.Category == "" {
		return nil, model.NewValidationError("name and category must not be blank")
	}

	replaceColors := req.Colors != nil
	if replaceColors {
		colors, err := normaliseColors(req.Colors)
		if err != nil {
			return nil, err
		}
		product.Colors = colors
	}

	found, err := s.productRepo.Update(ctx, product, replaceColors)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if !found {
		return nil, model.ErrProductNotFound
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Bool("colors_replaced", replaceColors).
		Msg("product updated")

	return product, nil
}

// Delete removes a product. Orders that already reference it are kept.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if !deleted {
		return model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

// normaliseColors trims color names and rejects blank, duplicate or
// out-of-range variants.
func normaliseColors(in []model.ColorVariant) ([]model.ColorVariant, error) {
	if len(in) == 0 {
		return nil, model.NewValidationError("at least one color is required")
	}

	seen := make(map[string]struct{}, len(in))
	colors := make([]model.ColorVariant, len(in))
	for i, c := range in {
		name := strings.TrimSpace(c.Color)
		if name == "" {
			return nil, model.NewValidationError(fmt.Sprintf("color %d: name is required", i))
		}
		if c.Quantity < 0 || c.Quantity > model.MaxQuantity {
			return nil, model.NewValidationError(fmt.Sprintf("color %q: quantity must be between 0 and %d", name, model.MaxQuantity))
		}
		if _, dup := seen[name]; dup {
			return nil, model.NewValidationError(fmt.Sprintf("color %q is listed twice", name))
		}
		seen[name] = struct{}{}
		colors[i] = model.ColorVariant{Color: name, Quantity: c.Quantity}
	}

	return colors, nil
}
