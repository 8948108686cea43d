package coupon

import (
	"encoding/hex"
	"time"

	"trendyshop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerConfig holds configuration for the coupon ledger.
type LedgerConfig struct {
	// Tiers is the spend threshold table. Defaults to DefaultTiers.
	Tiers []Tier

	// CodePrefix is prepended to generated coupon codes. Default: "COUPON".
	CodePrefix string

	// NewCode overrides code generation, mainly for tests.
	NewCode func() string

	// Now overrides the clock used for CreatedAt, mainly for tests.
	Now func() time.Time
}

// tierLedger implements Ledger over a fixed tier table.
type tierLedger struct {
	tiers   []Tier
	newCode func() string
	now     func() time.Time
	logger  zerolog.Logger
}

// NewLedger creates a coupon ledger. The tier table is validated and sorted.
func NewLedger(cfg *LedgerConfig, logger zerolog.Logger) (Ledger, error) {
	if cfg == nil {
		cfg = &LedgerConfig{}
	}

	tiers := cfg.Tiers
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	tiers, err := NormaliseTiers(tiers)
	if err != nil {
		return nil, err
	}

	prefix := cfg.CodePrefix
	if prefix == "" {
		prefix = "COUPON"
	}

	newCode := cfg.NewCode
	if newCode == nil {
		newCode = func() string { return GenerateCode(prefix) }
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	logger = logger.With().Str("component", "coupon-ledger").Logger()
	logger.Info().Int("tiers", len(tiers)).Msg("coupon ledger initialised")

	return &tierLedger{
		tiers:   tiers,
		newCode: newCode,
		now:     now,
		logger:  logger,
	}, nil
}

// GenerateCode returns prefix followed by 16 random hex characters.
// Collisions are possible in principle; the store rejects duplicates.
func GenerateCode(prefix string) string {
	id := uuid.New()
	return prefix + "-" + hex.EncodeToString(id[:8])
}

func (l *tierLedger) Tiers() []Tier {
	out := make([]Tier, len(l.tiers))
	copy(out, l.tiers)
	return out
}

func (l *tierLedger) ResolveDiscount(user *model.User, code string) (decimal.Decimal, *model.Coupon) {
	if code == "" {
		return decimal.Zero, nil
	}

	c, ok := user.RedeemCoupon(code)
	if !ok {
		l.logger.Debug().
			Str("user_id", user.ID.String()).
			Str("coupon_code", code).
			Msg("coupon not applicable, no discount")
		return decimal.Zero, nil
	}

	return c.Discount, c
}

func (l *tierLedger) AccrueAndIssue(user *model.User, totalSpent decimal.Decimal) []model.Coupon {
	var issued []model.Coupon

	for _, tier := range l.tiers {
		if totalSpent.LessThan(tier.Threshold) {
			break
		}

		c := model.Coupon{
			ID:        uuid.New(),
			UserID:    user.ID,
			Code:      l.newCode(),
			Discount:  tier.Discount,
			CreatedAt: l.now(),
		}
		if !user.AddCoupon(c) {
			continue
		}

		l.logger.Info().
			Str("user_id", user.ID.String()).
			Str("threshold", tier.Threshold.String()).
			Str("discount", tier.Discount.String()).
			Msg("tier coupon issued")

		issued = append(issued, c)
	}

	return issued
}
