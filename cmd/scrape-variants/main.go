package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"catalog/internal/catalog"
	"catalog/internal/config"
)

func main() {
	collectionsPath := flag.String("collections", "data/rare_beauty_collections.csv", "collections listing CSV")
	outPath := flag.String("out", "data/rare_beauty_variants.csv", "variants CSV to write")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	collections, err := catalog.LoadTable(*collectionsPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *collectionsPath).Msg("Failed to read collections")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := catalog.NewVariantFetcher(nil, cfg.ShopURL, cfg.ScrapeInterval, logger)
	rows, stats, err := fetcher.FetchVariants(ctx, collections)
	if err != nil {
		logger.Fatal().Err(err).Int("variants", len(rows)).Msg("Variant fetch interrupted, nothing written")
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create output directory")
	}
	out, err := os.Create(*outPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *outPath).Msg("Failed to create output file")
	}
	if err := catalog.WriteProducts(out, rows, catalog.VariantColumns); err != nil {
		_ = out.Close()
		logger.Fatal().Err(err).Msg("Failed to write variants")
	}
	if err := out.Close(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to close variants file")
	}

	logger.Info().
		Str("path", *outPath).
		Int("listed", stats.Listed).
		Int("fetched", stats.Fetched).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Int("variants", stats.Variants).
		Msg("Variants written")
}
