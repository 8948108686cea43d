package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// Order statuses in their conceptual fulfilment order.
const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
)

// OrderStatuses lists every accepted status value.
var OrderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

// Valid reports whether s is one of the accepted statuses.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts a raw value into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Order represents a customer order. Everything except Status is fixed at creation.
type Order struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"userId" db:"user_id"`
	UserName   string          `json:"userName,omitempty" db:"-"`
	Items      []OrderItem     `json:"items"`
	CouponCode *string         `json:"couponCode,omitempty" db:"coupon_code"`
	Discount   decimal.Decimal `json:"discount" db:"discount"`
	TotalCost  decimal.Decimal `json:"totalCost" db:"total_cost"`
	FirstName  string          `json:"firstName" db:"first_name"`
	LastName   string          `json:"lastName" db:"last_name"`
	Phone      string          `json:"phone" db:"phone"`
	Address    string          `json:"address" db:"address"`
	Status     OrderStatus     `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Color     string          `json:"color" db:"color"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"price" db:"unit_price"`
}

// Subtotal returns unit price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderRequest represents the request payload for placing an order.
type OrderRequest struct {
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	FirstName  string             `json:"firstName" validate:"required,notblank,max=100"`
	LastName   string             `json:"lastName" validate:"required,notblank,max=100"`
	Phone      string             `json:"phone" validate:"required,notblank,max=32"`
	Address    string             `json:"address" validate:"required,notblank,max=500"`
	CouponCode *string            `json:"couponCode,omitempty" validate:"omitempty,max=64"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID string          `json:"productId" validate:"required,uuid"`
	Color     string          `json:"color" validate:"required,notblank,max=64"`
	Quantity  int             `json:"quantity" validate:"gt=0,lte=2147483647"`
	Price     decimal.Decimal `json:"price" validate:"money"`
}

// StatusUpdateRequest represents the request payload for changing an order status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	Status *OrderStatus
	Limit  int
	Offset int
}

// OrderPage is a page of orders returned by the admin listing.
type OrderPage struct {
	Orders      []Order `json:"orders"`
	TotalOrders int     `json:"totalOrders"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
}

// StatsPeriod selects the bucket width of the sales statistics.
type StatsPeriod string

// Supported statistics periods.
const (
	PeriodDays   StatsPeriod = "days"
	PeriodMonths StatsPeriod = "months"
)

// SalesBucket is the summed order value of one day or month.
type SalesBucket struct {
	Bucket string
	Total  decimal.Decimal
}

// AdminStats is the dashboard summary returned by the stats endpoint.
type AdminStats struct {
	TotalSpent  decimal.Decimal   `json:"totalSpent"`
	TotalOrders int               `json:"totalOrders"`
	Dates       []string          `json:"dates"`
	Values      []decimal.Decimal `json:"values"`
}
