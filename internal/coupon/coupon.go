package coupon

import (
	"context"

	"trendyshop/internal/model"

	"github.com/shopspring/decimal"
)

// Ledger applies and issues loyalty coupons on a user's coupon list.
// Changes are made in memory only; persisting them is the caller's job.
type Ledger interface {
	// ResolveDiscount redeems the unused coupon matching code and returns its
	// discount together with the redeemed coupon. An empty, unknown or already
	// used code yields a zero discount and a nil coupon.
	ResolveDiscount(user *model.User, code string) (decimal.Decimal, *model.Coupon)

	// AccrueAndIssue appends a coupon for every tier reached by totalSpent that
	// the user does not hold yet, and returns only the newly issued coupons.
	AccrueAndIssue(user *model.User, totalSpent decimal.Decimal) []model.Coupon

	// Tiers returns the configured tier table, sorted by threshold.
	Tiers() []Tier
}

// Loader defines the interface for loading coupon tier tables.
type Loader interface {
	// Load reads a tier table file, optionally gzip-compressed.
	Load(ctx context.Context, filePath string) ([]Tier, error)
}
