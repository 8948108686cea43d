package service

import (
	"context"
	"fmt"
	"time"

	"trendyshop/internal/model"
	"trendyshop/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// statsWindow describes how far back a period looks and how it buckets sales.
type statsWindow struct {
	lookback time.Duration
	layout   string
}

var statsWindows = map[model.StatsPeriod]statsWindow{
	model.PeriodDays:   {lookback: 30 * 24 * time.Hour, layout: "YYYY-MM-DD"},
	model.PeriodMonths: {lookback: 365 * 24 * time.Hour, layout: "YYYY-MM"},
}

// statsService implements StatsService.
type statsService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
	now       func() time.Time
	logger    zerolog.Logger
}

// NewStatsService creates a new admin statistics service.
func NewStatsService(orderRepo repository.OrderRepository, userRepo repository.UserRepository, logger zerolog.Logger) StatsService {
	return &statsService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		now:       time.Now,
		logger:    logger.With().Str("service", "stats").Logger(),
	}
}

// AggregateStats runs the three dashboard queries concurrently. Unknown
// periods fall back to days.
func (s *statsService) AggregateStats(ctx context.Context, period string) (*model.AdminStats, error) {
	p := model.StatsPeriod(period)
	window, ok := statsWindows[p]
	if !ok {
		p = model.PeriodDays
		window = statsWindows[p]
	}
	since := s.now().UTC().Add(-window.lookback)

	var (
		totalSpent  decimal.Decimal
		totalOrders int
		buckets     []model.SalesBucket
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		totalSpent, err = s.userRepo.SumTotalSpent(gctx)
		return err
	})

	g.Go(func() error {
		var err error
		totalOrders, err = s.orderRepo.Count(gctx, nil)
		return err
	})

	g.Go(func() error {
		var err error
		buckets, err = s.orderRepo.SalesBuckets(gctx, since, window.layout)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("period", string(p)).Msg("failed to aggregate stats")
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	stats := &model.AdminStats{
		TotalSpent:  totalSpent,
		TotalOrders: totalOrders,
		Dates:       make([]string, len(buckets)),
		Values:      make([]decimal.Decimal, len(buckets)),
	}
	for i, b := range buckets {
		stats.Dates[i] = b.Bucket
		stats.Values[i] = b.Total
	}

	s.logger.Debug().
		Str("period", string(p)).
		Int("buckets", len(buckets)).
		Msg("stats aggregated")

	return stats, nil
}
