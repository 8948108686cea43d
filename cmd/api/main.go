package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trendyshop/internal/config"
	"trendyshop/internal/coupon"
	"trendyshop/internal/database"
	"trendyshop/internal/handler"
	"trendyshop/internal/repository"
	"trendyshop/internal/router"
	"trendyshop/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	tiers, err := loadTiers(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load coupon tiers: %w", err)
	}

	ledger, err := coupon.NewLedger(&coupon.LedgerConfig{
		Tiers:      tiers,
		CodePrefix: cfg.Coupon.CodePrefix,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize coupon ledger: %w", err)
	}

	var (
		products = repository.NewProductRepository(pool, logger)
		orders   = repository.NewOrderRepository(pool, logger)
		users    = repository.NewUserRepository(pool, logger)

		productSvc = service.NewProductService(products, logger)
		orderSvc   = service.NewOrderService(orders, products, users, ledger, logger)
		userSvc    = service.NewUserService(users, logger)
		statsSvc   = service.NewStatsService(orders, users, logger)
	)

	h := router.New(router.Handlers{
		Product: handler.NewProductHandler(productSvc, logger),
		Order:   handler.NewOrderHandler(orderSvc, logger),
		User:    handler.NewUserHandler(userSvc, logger),
		Admin:   handler.NewAdminHandler(statsSvc, orderSvc, userSvc, logger),
	}, userSvc, cfg.Auth.APIKey, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return serve(ctx, srv, time.Duration(cfg.Server.ShutdownTimeout)*time.Second, logger)
}

// serve runs srv until ctx is cancelled, then drains in-flight requests for
// at most grace before closing remaining connections.
func serve(ctx context.Context, srv *http.Server, grace time.Duration, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("address", srv.Addr).Msg("trendyshop API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Dur("grace", grace).Msg("stopping, draining open requests")

	drainCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(drainCtx); err != nil {
		logger.Error().Err(err).Msg("drain did not finish, closing connections")
		_ = srv.Close()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// loadTiers reads the tier table from COUPON_TIERS_FILE when set, trying S3
// first if enabled, and otherwise parses the inline COUPON_TIERS list.
func loadTiers(ctx context.Context, cfg *config.Config, logger zerolog.Logger) ([]coupon.Tier, error) {
	if cfg.Coupon.TiersFile == "" {
		logger.Info().Msg("using inline coupon tiers")
		return coupon.ParseTierList(cfg.Coupon.Tiers)
	}

	fileLoader := coupon.NewFileLoader(logger)
	loader := fileLoader

	if cfg.S3.Enabled {
		s3Loader, err := coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
		}
	} else {
		logger.Info().Msg("using local file system for coupon tiers (S3 disabled)")
	}

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return loader.Load(loadCtx, cfg.Coupon.TiersFile)
}
