package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"trendyshop/internal/coupon"
	"trendyshop/internal/model"
	"trendyshop/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultPage     = 1
	defaultLimit    = 10
	maxLimit        = 100
	latestPageLimit = 10
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	ledger      coupon.Ledger
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	ledger coupon.Ledger,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		ledger:      ledger,
		now:         time.Now,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder creates an order inside one transaction. Any failure rolls back
// stock reservations, coupon redemption and spend accrual together.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.Order, error) {
	productIDs, err := s.validateOrderRequest(req)
	if err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order, err := s.placeOrderTx(ctx, tx, userID, req, productIDs)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Int("item_count", len(order.Items)).
		Str("total_cost", order.TotalCost.String()).
		Msg("order created successfully")

	return order, nil
}

func (s *orderService) placeOrderTx(
	ctx context.Context,
	tx pgx.Tx,
	userID uuid.UUID,
	req *model.OrderRequest,
	productIDs []uuid.UUID,
) (*model.Order, error) {
	user, err := s.userRepo.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		s.logger.Warn().Str("user_id", userID.String()).Msg("order placed for unknown user")
		return nil, model.ErrUserNotFound
	}

	now := s.now().UTC()
	order := &model.Order{
		ID:        uuid.New(),
		UserID:    user.ID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	gross := decimal.Zero
	order.Items = make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		order.Items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: productIDs[i],
			Color:     item.Color,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		}
		gross = gross.Add(order.Items[i].Subtotal())
	}
	if gross.GreaterThan(model.MaxAmount) {
		return nil, model.NewValidationError("order total exceeds " + model.MaxAmount.String())
	}

	code := ""
	if req.CouponCode != nil {
		code = strings.TrimSpace(*req.CouponCode)
	}
	discount, redeemed := s.ledger.ResolveDiscount(user, code)
	if redeemed != nil {
		appliedCode := redeemed.Code
		order.CouponCode = &appliedCode
		order.Discount = discount
	}

	order.TotalCost = gross.Sub(discount)
	if order.TotalCost.IsNegative() {
		order.TotalCost = decimal.Zero
	}

	if user.TotalSpent.Add(order.TotalCost).GreaterThan(model.MaxAmount) {
		s.logger.Warn().Str("user_id", user.ID.String()).Msg("lifetime spend would overflow")
		return nil, model.NewValidationError("lifetime spend would exceed " + model.MaxAmount.String())
	}

	for _, item := range reservationOrder(order.Items) {
		if err := s.productRepo.ReserveStock(ctx, tx, item.ProductID, item.Color, item.Quantity); err != nil {
			s.logger.Warn().
				Err(err).
				Str("product_id", item.ProductID.String()).
				Str("color", item.Color).
				Int("quantity", item.Quantity).
				Msg("stock reservation failed")
			return nil, err
		}
	}

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if redeemed != nil {
		if err := s.userRepo.MarkCouponUsed(ctx, tx, redeemed.ID); err != nil {
			return nil, fmt.Errorf("failed to redeem coupon: %w", err)
		}
		s.logger.Info().
			Str("user_id", user.ID.String()).
			Str("coupon_code", redeemed.Code).
			Str("discount", discount.String()).
			Msg("coupon redeemed")
	}

	totalSpent, err := s.userRepo.AddSpent(ctx, tx, user.ID, order.TotalCost)
	if err != nil {
		return nil, fmt.Errorf("failed to accrue spend: %w", err)
	}
	user.TotalSpent = totalSpent

	if issued := s.ledger.AccrueAndIssue(user, totalSpent); len(issued) > 0 {
		if _, err := s.userRepo.InsertCoupons(ctx, tx, issued); err != nil {
			return nil, fmt.Errorf("failed to issue coupons: %w", err)
		}
	}

	return order, nil
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list user orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

func (s *orderService) ListAll(ctx context.Context, status string, page, limit int) (*model.OrderPage, error) {
	filter := model.OrderFilter{}
	if status != "" {
		st, err := model.ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &st
	}

	page, limit = normalisePage(page, limit)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	total, err := s.orderRepo.Count(ctx, filter.Status)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count orders")
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &model.OrderPage{
		Orders:      orders,
		TotalOrders: total,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
	}, nil
}

func (s *orderService) Latest(ctx context.Context, page int) ([]model.Order, error) {
	page, _ = normalisePage(page, latestPageLimit)

	orders, err := s.orderRepo.Latest(ctx, latestPageLimit, (page-1)*latestPageLimit)
	if err != nil {
		s.logger.Error().Err(err).Int("page", page).Msg("failed to list latest orders")
		return nil, fmt.Errorf("failed to list latest orders: %w", err)
	}

	return orders, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error) {
	st, err := model.ParseOrderStatus(status)
	if err != nil {
		s.logger.Warn().Str("order_id", id.String()).Str("status", status).Msg("invalid order status")
		return nil, err
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, st)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", id.String()).Str("status", status).Msg("order status updated")
	return order, nil
}

func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if !deleted {
		return model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order deleted")
	return nil
}

// validateOrderRequest checks the request and returns the parsed product IDs.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) ([]uuid.UUID, error) {
	if req == nil {
		return nil, model.NewValidationError("order request is required")
	}

	if len(req.Items) == 0 {
		return nil, model.NewValidationError("order must contain at least one item")
	}

	for _, field := range []struct{ name, value string }{
		{"firstName", req.FirstName},
		{"lastName", req.LastName},
		{"phone", req.Phone},
		{"address", req.Address},
	} {
		if strings.TrimSpace(field.value) == "" {
			return nil, model.NewValidationError(field.name + " is required")
		}
	}

	productIDs := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, model.NewValidationError(fmt.Sprintf("item %d: invalid product ID", i))
		}
		productIDs[i] = id

		if item.Quantity <= 0 || item.Quantity > model.MaxQuantity {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return nil, model.ErrInvalidQuantity
		}

		if strings.TrimSpace(item.Color) == "" {
			return nil, model.NewValidationError(fmt.Sprintf("item %d: color is required", i))
		}

		if item.Price.IsNegative() {
			return nil, model.NewValidationError(fmt.Sprintf("item %d: price must not be negative", i))
		}
	}

	return productIDs, nil
}

// reservationOrder returns the items sorted by product and colour. Every
// transaction locks variant rows in this order, so two carts holding the same
// variants cannot deadlock each other.
func reservationOrder(items []model.OrderItem) []model.OrderItem {
	sorted := make([]model.OrderItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].ProductID.String(), sorted[j].ProductID.String()
		if a != b {
			return a < b
		}
		return sorted[i].Color < sorted[j].Color
	})
	return sorted
}

// normalisePage applies the default page and limit and caps both.
func normalisePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if page > model.MaxPage {
		page = model.MaxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
