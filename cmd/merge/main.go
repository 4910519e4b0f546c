package main

import (
	"flag"
	"os"
	"path/filepath"

	"catalog/internal/catalog"
	"catalog/internal/config"

	"github.com/rs/zerolog"
)

func main() {
	collectionsPath := flag.String("collections", "data/rare_beauty_collections.csv", "collections listing CSV (optional)")
	detailsPath := flag.String("details", "data/rare_beauty_details.csv", "product details CSV (optional)")
	variantsPath := flag.String("variants", "data/rare_beauty_variants.csv", "variants CSV")
	outPath := flag.String("out", "", "output CSV (defaults to MASTER_CSV)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	if *outPath == "" {
		*outPath = cfg.MasterCSV
	}

	variants, err := catalog.LoadTable(*variantsPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *variantsPath).Msg("Failed to read variants")
	}
	details := loadOptional(logger, *detailsPath, "details")
	collections := loadOptional(logger, *collectionsPath, "collections")

	rows, columns, stats := catalog.Merge(collections, details, variants)

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create output directory")
	}
	out, err := os.Create(*outPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *outPath).Msg("Failed to create output file")
	}
	if err := catalog.WriteProducts(out, rows, columns); err != nil {
		_ = out.Close()
		logger.Fatal().Err(err).Msg("Failed to write master catalog")
	}
	if err := out.Close(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to close master catalog")
	}

	logger.Info().
		Str("path", *outPath).
		Int("variants", stats.Variants).
		Int("with_details", stats.WithDetails).
		Int("category_backfills", stats.CategoryBackfills).
		Int("duplicates_dropped", stats.DuplicatesDropped).
		Strs("columns", columns).
		Msg("Master catalog written")
}

// loadOptional returns nil when the fragment is missing so the merge runs without it
func loadOptional(logger zerolog.Logger, path, name string) *catalog.Table {
	if _, err := os.Stat(path); err != nil {
		logger.Warn().Str("path", path).Msgf("No %s file, skipping", name)
		return nil
	}
	table, err := catalog.LoadTable(path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msgf("Failed to read %s", name)
	}
	return table
}
