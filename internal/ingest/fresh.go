package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog/internal/checkpoint"
	"catalog/internal/vectorindex"

	"github.com/rs/zerolog"
)

// Reset empties the index and forgets the checkpoint so the next run starts
// at row 0. Deletes are eventually visible on some backends, so it polls the
// vector count until it reaches zero or timeout elapses.
func Reset(ctx context.Context, index vectorindex.Index, store checkpoint.Store, timeout, interval time.Duration, logger zerolog.Logger) error {
	stats, err := index.DescribeStats(ctx)
	switch {
	case errors.Is(err, vectorindex.ErrIndexNotFound):
		logger.Info().Str("index", index.Name()).Msg("Index does not exist yet, nothing to clear")
	case err != nil:
		return fmt.Errorf("failed to read index stats: %w", err)
	}
	logger.Info().Uint64("vectors", stats.TotalVectorCount).Msg("Clearing index before fresh ingest")

	if stats.TotalVectorCount > 0 {
		if err := index.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to delete vectors: %w", err)
		}
		if err := waitEmpty(ctx, index, timeout, interval); err != nil {
			return err
		}
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	logger.Info().Msg("Index and checkpoint cleared")
	return nil
}

func waitEmpty(ctx context.Context, index vectorindex.Index, timeout, interval time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last uint64
	for {
		stats, err := index.DescribeStats(ctx)
		if err == nil {
			if stats.TotalVectorCount == 0 {
				return nil
			}
			last = stats.TotalVectorCount
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("index still holds %d vectors after %s", last, timeout)
		case <-ticker.C:
		}
	}
}
