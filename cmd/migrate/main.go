// Command migrate checks database connectivity and applies the schema. It
// reads the same environment as the API server. With -print it writes the
// schema to stdout and exits without connecting.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"trendyshop/internal/config"
	"trendyshop/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	printOnly := flag.Bool("print", false, "print the schema instead of applying it")
	flag.Parse()

	if *printOnly {
		_, err := fmt.Fprint(os.Stdout, database.Schema())
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	logger.Info().Str("database", dbName).Msg("connected")

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	rows, err := pool.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' ORDER BY table_name`)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		logger.Info().Str("table", name).Msg("table present")
	}

	return rows.Err()
}
