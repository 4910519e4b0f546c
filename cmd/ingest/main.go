package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog/internal/catalog"
	"catalog/internal/checkpoint"
	"catalog/internal/config"
	"catalog/internal/embeddings"
	"catalog/internal/ingest"
	"catalog/internal/openai"
	"catalog/internal/vectorindex"

	"github.com/schollz/progressbar/v3"
)

func main() {
	fresh := flag.Bool("fresh", false, "delete every vector and the checkpoint before ingesting")
	csvPath := flag.String("csv", "", "master catalog CSV (overrides MASTER_CSV)")
	quiet := flag.Bool("quiet", false, "disable the progress bar")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *csvPath != "" {
		cfg.MasterCSV = *csvPath
	}

	// Setup logger
	logger := cfg.SetupLogger()

	if err := cfg.ValidateForIngest(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	if _, err := os.Stat(cfg.MasterCSV); err != nil {
		logger.Fatal().Err(&config.ConfigurationError{Setting: "MASTER_CSV", Reason: err.Error()}).Msg("Input file not found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := openai.NewClient(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create embedding client")
	}
	policy := embeddings.RetryPolicy{MaxAttempts: cfg.EmbedMaxAttempts, BaseDelay: cfg.EmbedBaseDelay}
	adapter := embeddings.NewAdapter(client, policy, cfg.BatchSize, cfg.EmbeddingDimension, logger)

	index, err := vectorindex.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open vector index")
	}
	defer closeQuietly(index)

	store, err := checkpoint.NewFromConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open checkpoint store")
	}
	defer closeQuietly(store)

	if *fresh {
		if err := ingest.Reset(ctx, index, store, cfg.IndexReadyTimeout, time.Second, logger); err != nil {
			logger.Fatal().Err(err).Msg("Failed to reset index")
		}
	}

	opts := ingest.Options{
		BatchSize:       cfg.BatchSize,
		UpsertBatchSize: cfg.UpsertBatchSize,
		BatchDelay:      cfg.BatchDelay,
		UpsertPolicy:    embeddings.RetryPolicy{MaxAttempts: cfg.EmbedMaxAttempts, BaseDelay: cfg.EmbedBaseDelay},
		IndexSpec:       vectorindex.SpecFromConfig(cfg),
		ReadyTimeout:    cfg.IndexReadyTimeout,
	}
	var bar *progressbar.ProgressBar
	if !*quiet {
		opts.OnBatch = func(p ingest.Progress) {
			if bar == nil {
				bar = newProgressBar(p.Total)
				_ = bar.Set(p.Start)
			}
			_ = bar.Set(p.End)
		}
	}

	coordinator := ingest.New(catalog.FileSource{Path: cfg.MasterCSV}, adapter, index, store, opts, logger)

	logger.Info().
		Str("csv", cfg.MasterCSV).
		Str("index", cfg.IndexName).
		Str("provider", client.GetProviderName()).
		Str("model", client.GetEmbeddingModel()).
		Msg("Starting ingestion")
	start := time.Now()

	result, err := coordinator.Run(ctx)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		var failure *ingest.BatchFailure
		if result != nil && result.State == ingest.StateAborted && errors.As(err, &failure) {
			logger.Error().
				Err(err).
				Str("stage", string(failure.Stage)).
				Int("resume_from", failure.Start).
				Int("uploaded", result.Uploaded).
				Msg("Ingestion aborted, checkpoint saved")
			closeQuietly(store)
			closeQuietly(index)
			os.Exit(1)
		}
		logger.Fatal().Err(err).Msg("Ingestion failed before processing")
	}

	logger.Info().
		Dur("duration", time.Since(start)).
		Int("rows", result.Total).
		Int("uploaded", result.Uploaded).
		Int("skipped", result.Skipped).
		Msg("Successfully ingested catalog")
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Uploading[reset]"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func closeQuietly(v any) {
	if c, ok := v.(io.Closer); ok {
		_ = c.Close()
	}
}
