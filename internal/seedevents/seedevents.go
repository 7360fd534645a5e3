// Package seedevents generates synthetic vendor export files so the
// export-file connector has data to import without a vendor account.
package seedevents

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kairyx-ai/kairyx/internal/adapters/source"
)

const outputFilePermission = 0o644

// Config holds configuration for the export generator.
type Config struct {
	Players      int     // Number of synthetic players
	Days         int     // Calendar days of activity, ending today
	Seed         int64   // Generator seed
	PurchaseRate float64 // Chance of a purchase per session
	Out          string  // Output directory for the export file
}

// Run generates one gzipped JSON-lines export file and returns its path
// and the number of events written.
func Run(ctx context.Context, cfg *Config) (string, int, error) {
	if cfg.Players <= 0 {
		return "", 0, fmt.Errorf("players must be positive, got %d", cfg.Players)
	}
	if cfg.Days <= 0 {
		return "", 0, fmt.Errorf("days must be positive, got %d", cfg.Days)
	}

	connector := source.NewSynthetic(
		source.WithSyntheticPlayers(cfg.Players),
		source.WithSyntheticSeed(cfg.Seed),
		source.WithSyntheticPurchaseRate(cfg.PurchaseRate),
	)

	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -(cfg.Days - 1))

	events, err := connector.Export(ctx, start, end)
	if err != nil {
		return "", 0, fmt.Errorf("generate events: %w", err)
	}

	if err := os.MkdirAll(cfg.Out, 0o755); err != nil {
		return "", 0, fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(cfg.Out, fmt.Sprintf("synthetic_export_%s.json.gz", time.Now().UTC().Format("20060102_150405")))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFilePermission)
	if err != nil {
		return "", 0, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	enc := json.NewEncoder(gz)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			gz.Close()
			return "", 0, fmt.Errorf("encode event: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return "", 0, fmt.Errorf("flush export file: %w", err)
	}

	return path, len(events), nil
}
