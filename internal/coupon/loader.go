package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for tier tables on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based tier loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "tier-loader").Logger(),
	}
}

// Load reads a tier table file. Gzip-compressed files are detected by their
// magic bytes.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]Tier, error) {
	l.logger.Info().Str("file", filePath).Msg("loading coupon tier file")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open tier file")
		return nil, fmt.Errorf("failed to open tier file %s: %w", filePath, err)
	}
	defer file.Close()

	tiers, err := decodeTiers(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read tier file")
		return nil, fmt.Errorf("failed to read tier file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("tiers_loaded", len(tiers)).
		Msg("coupon tier file loaded successfully")

	return tiers, nil
}

// decodeTiers reads a plain or gzip-compressed tier table.
func decodeTiers(r io.Reader) ([]Tier, error) {
	br := bufio.NewReader(r)

	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		return readTiers(gz)
	}

	return readTiers(br)
}
