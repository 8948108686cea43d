package coupon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Tier grants a coupon worth Discount once cumulative spend reaches Threshold.
type Tier struct {
	Threshold decimal.Decimal `json:"threshold"`
	Discount  decimal.Decimal `json:"discount"`
}

// DefaultTiers is the loyalty table used when nothing else is configured.
func DefaultTiers() []Tier {
	return []Tier{
		{Threshold: decimal.NewFromInt(10000), Discount: decimal.NewFromInt(1000)},
		{Threshold: decimal.NewFromInt(50000), Discount: decimal.NewFromInt(2500)},
		{Threshold: decimal.NewFromInt(100000), Discount: decimal.NewFromInt(5000)},
	}
}

// ParseTierList parses an inline "threshold:discount,threshold:discount" list.
func ParseTierList(s string) ([]Tier, error) {
	var tiers []Tier
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		tier, err := parseTier(entry)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	return NormaliseTiers(tiers)
}

// readTiers parses one "threshold:discount" entry per line. Blank lines and
// lines starting with '#' are skipped.
func readTiers(r io.Reader) ([]Tier, error) {
	var tiers []Tier

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tier, err := parseTier(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		tiers = append(tiers, tier)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NormaliseTiers(tiers)
}

func parseTier(entry string) (Tier, error) {
	threshold, discount, ok := strings.Cut(entry, ":")
	if !ok {
		return Tier{}, fmt.Errorf("invalid tier %q: expected threshold:discount", entry)
	}

	t, err := decimal.NewFromString(strings.TrimSpace(threshold))
	if err != nil {
		return Tier{}, fmt.Errorf("invalid tier threshold %q: %w", threshold, err)
	}

	d, err := decimal.NewFromString(strings.TrimSpace(discount))
	if err != nil {
		return Tier{}, fmt.Errorf("invalid tier discount %q: %w", discount, err)
	}

	return Tier{Threshold: t, Discount: d}, nil
}

// NormaliseTiers validates a tier table and returns a copy sorted by threshold.
// Discounts must be distinct because a user holds at most one coupon per
// discount amount.
func NormaliseTiers(tiers []Tier) ([]Tier, error) {
	if len(tiers) == 0 {
		return nil, errors.New("tier table is empty")
	}

	out := make([]Tier, len(tiers))
	copy(out, tiers)

	seen := make(map[string]struct{}, len(out))
	for _, t := range out {
		if !t.Threshold.IsPositive() {
			return nil, fmt.Errorf("tier threshold must be positive: %s", t.Threshold)
		}
		if !t.Discount.IsPositive() {
			return nil, fmt.Errorf("tier discount must be positive: %s", t.Discount)
		}
		key := t.Discount.String()
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate tier discount: %s", key)
		}
		seen[key] = struct{}{}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Threshold.LessThan(out[j].Threshold)
	})

	return out, nil
}
