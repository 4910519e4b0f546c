package main

import (
	"context"
	"os"
	"time"

	"catalog/internal/catalog"
	"catalog/internal/config"
	"catalog/internal/openai"
	"catalog/internal/vectorindex"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	failed := 0
	fail := func(check string, err error) {
		failed++
		logger.Error().Err(err).Str("check", check).Msg("Check failed")
	}
	pass := func(check string) {
		logger.Info().Str("check", check).Msg("Check passed")
	}

	if err := cfg.ValidateForIngest(); err != nil {
		fail("configuration", err)
	} else {
		pass("configuration")
	}

	if rows, err := catalog.LoadProducts(cfg.MasterCSV); err != nil {
		fail("master csv", err)
	} else {
		logger.Info().Str("check", "master csv").Str("path", cfg.MasterCSV).Int("rows", len(rows)).Msg("Check passed")
	}

	if client, err := openai.NewClient(cfg, logger); err != nil {
		fail("embedding client", err)
	} else if err := client.TestConnection(ctx); err != nil {
		fail("embedding service", err)
	} else {
		pass("embedding service")
	}

	if index, err := vectorindex.NewFromConfig(cfg, logger); err != nil {
		fail("vector index client", err)
	} else {
		names, err := index.ListIndexes(ctx)
		if err != nil {
			fail("vector index", err)
		} else {
			exists := false
			for _, name := range names {
				exists = exists || name == cfg.IndexName
			}
			logger.Info().Str("check", "vector index").Strs("indexes", names).Bool("target_exists", exists).Msg("Check passed")
		}
		if closer, ok := index.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	if failed > 0 {
		logger.Error().Int("failed", failed).Msg("Setup incomplete")
		os.Exit(1)
	}
	logger.Info().Msg("All checks passed, ready to ingest")
}
