package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a customer or staff account.
type User struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Email        string          `json:"email" db:"email"`
	PasswordHash string          `json:"-" db:"password_hash"`
	TotalSpent   decimal.Decimal `json:"totalSpent" db:"total_spent"`
	IsOwner      bool            `json:"isOwner" db:"is_owner"`
	IsWorker     bool            `json:"isWorker" db:"is_worker"`
	Coupons      []Coupon        `json:"coupons"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// IsStaff reports whether the user may access administrative routes.
func (u *User) IsStaff() bool {
	return u.IsOwner || u.IsWorker
}

// RedeemCoupon marks the unused coupon with the given code as used and returns
// it. Used or unknown codes are reported with ok == false and nothing changes.
func (u *User) RedeemCoupon(code string) (c *Coupon, ok bool) {
	for i := range u.Coupons {
		if u.Coupons[i].Code == code && !u.Coupons[i].Used {
			u.Coupons[i].Used = true
			return &u.Coupons[i], true
		}
	}
	return nil, false
}

// HoldsCouponTier reports whether the user already owns a coupon, used or not,
// worth the given discount.
func (u *User) HoldsCouponTier(discount decimal.Decimal) bool {
	for _, c := range u.Coupons {
		if c.Discount.Equal(discount) {
			return true
		}
	}
	return false
}

// AddCoupon appends a coupon unless one of the same tier is already held.
func (u *User) AddCoupon(c Coupon) bool {
	if u.HoldsCouponTier(c.Discount) {
		return false
	}
	u.Coupons = append(u.Coupons, c)
	return true
}

// Coupon is a loyalty discount owned by a user.
type Coupon struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"-" db:"user_id"`
	Code      string          `json:"code" db:"code"`
	Discount  decimal.Decimal `json:"discount" db:"discount"`
	Used      bool            `json:"isUsed" db:"used"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// CreateUserRequest represents the request payload for registering an account.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserPage is a page of accounts returned by the staff user listing.
type UserPage struct {
	Users      []User `json:"users"`
	TotalPages int    `json:"totalPages"`
}

// WishlistRequest names the product to add to or remove from a wishlist.
type WishlistRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}
