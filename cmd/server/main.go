package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog/internal/cache"
	"catalog/internal/config"
	"catalog/internal/embeddings"
	"catalog/internal/handlers"
	"catalog/internal/openai"
	"catalog/internal/search"
	"catalog/internal/server"
	"catalog/internal/vectorindex"
)

// @title Catalog Recommendation API
// @version 1.0
// @description Semantic product recommendations over the embedded cosmetics catalog.
// @BasePath /
func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	var (
		index       handlers.IndexStats
		recommender handlers.Recommender
	)

	if err := cfg.ValidateForSearch(); err != nil {
		logger.Warn().Err(err).Msg("Search disabled")
	} else {
		idx, err := vectorindex.NewFromConfig(cfg, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Vector index unavailable, starting without search")
		} else {
			index = idx
			client, err := openai.NewClient(cfg, logger)
			if err != nil {
				logger.Warn().Err(err).Msg("Embedding client unavailable, starting without search")
			} else {
				adapter := embeddings.NewAdapter(client, embeddings.RetryPolicy{
					MaxAttempts: cfg.EmbedMaxAttempts,
					BaseDelay:   cfg.EmbedBaseDelay,
				}, 1, cfg.EmbeddingDimension, logger)
				queries := cache.New[[]float32](cfg.QueryCacheTTL)
				recommender = search.NewService(adapter, idx, queries, cfg.SearchTopK, logger)
			}
		}
	}

	// Create and initialize server
	srv := server.New(cfg, index, recommender, logger)
	srv.Initialize()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logger.Info().Msg("Server stopped")
}
