package main

import (
	"compress/gzip"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"trendyshop/internal/coupon"

	"github.com/rs/zerolog"
)

// Writes a gzip-compressed coupon tier table that COUPON_TIERS_FILE (or the
// S3 loader, after upload) can point at, then reads it back as the service would.
//
//	go run ./scripts -tiers "10000:1000,50000:2500,100000:5000" -out data/coupons/tiers.txt.gz
func main() {
	tierList := flag.String("tiers", "", "inline threshold:discount list (default: built-in table)")
	out := flag.String("out", "data/coupons/tiers.txt.gz", "output file")
	flag.Parse()

	tiers := coupon.DefaultTiers()
	if *tierList != "" {
		var err error
		tiers, err = coupon.ParseTierList(*tierList)
		if err != nil {
			log.Fatalf("Invalid tier list: %v", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	if err := writeTierFile(*out, tiers); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}

	loaded, err := coupon.NewFileLoader(zerolog.Nop()).Load(context.Background(), *out)
	if err != nil {
		log.Fatalf("Written file does not load: %v", err)
	}

	fmt.Printf("Created %s with %d tiers\n", *out, len(loaded))
	for _, t := range loaded {
		fmt.Printf("  spend >= %s earns a %s coupon\n", t.Threshold, t.Discount)
	}
}

func writeTierFile(filePath string, tiers []coupon.Tier) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)

	if _, err := fmt.Fprintln(gzipWriter, "# threshold:discount"); err != nil {
		return err
	}
	for _, t := range tiers {
		if _, err := fmt.Fprintf(gzipWriter, "%s:%s\n", t.Threshold, t.Discount); err != nil {
			return fmt.Errorf("failed to write tier: %w", err)
		}
	}

	return gzipWriter.Close()
}
