package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kairyx-ai/kairyx/internal/seedevents"
	"github.com/kairyx-ai/kairyx/pkg/logger"
)

// Default configuration constants.
const (
	defaultPlayers      = 25
	defaultDays         = 30
	defaultSeed         = 42
	defaultPurchaseRate = 0.15
	defaultOutDir       = "exports"
	runTimeout          = 2 * time.Minute
)

func main() {
	var (
		players      = flag.Int("players", defaultPlayers, "Number of synthetic players")
		days         = flag.Int("days", defaultDays, "Calendar days of activity, ending today")
		seed         = flag.Int64("seed", defaultSeed, "Generator seed")
		purchaseRate = flag.Float64("purchase-rate", defaultPurchaseRate, "Chance of a purchase per session")
		out          = flag.String("out", defaultOutDir, "Output directory for the export file")
	)
	flag.Parse()

	if err := logger.Init("text"); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	path, count, err := seedevents.Run(ctx, &seedevents.Config{
		Players:      *players,
		Days:         *days,
		Seed:         *seed,
		PurchaseRate: *purchaseRate,
		Out:          *out,
	})
	if err != nil {
		os.Stderr.WriteString("export generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	fmt.Printf("wrote %d events to %s\n", count, path)
}
