// Package embeddings turns catalog rows into embedding input and metadata and
// wraps the remote embedding service with bounded retries.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrVectorCountMismatch means the service returned a different number of vectors than texts
	ErrVectorCountMismatch = errors.New("embedding count mismatch")
	// ErrDimensionMismatch means a vector does not have the configured dimension
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Provider is the remote embedding service
type Provider interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder produces one vector per input text, in input order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Adapter calls a Provider in bounded request sizes and retries failed requests
type Adapter struct {
	provider  Provider
	policy    RetryPolicy
	maxBatch  int
	dimension int
	logger    zerolog.Logger
}

// NewAdapter creates an adapter. maxBatch <= 0 sends every call as one
// request; dimension <= 0 disables dimension checks.
func NewAdapter(provider Provider, policy RetryPolicy, maxBatch, dimension int, logger zerolog.Logger) *Adapter {
	a := &Adapter{
		provider:  provider,
		policy:    policy,
		maxBatch:  maxBatch,
		dimension: dimension,
		logger:    logger.With().Str("component", "embedding_adapter").Logger(),
	}
	if a.policy.OnRetry == nil {
		a.policy.OnRetry = func(attempt int, wait time.Duration, err error) {
			a.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("Embedding request failed, retrying")
		}
	}
	return a
}

// Dimension returns the expected vector dimension
func (a *Adapter) Dimension() int {
	return a.dimension
}

// Embed returns vectors aligned with texts
func (a *Adapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	size := a.maxBatch
	if size <= 0 {
		size = len(texts)
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		chunk, err := a.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, chunk...)
	}
	return vectors, nil
}

func (a *Adapter) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := a.policy.Do(ctx, func(ctx context.Context) error {
		result, err := a.provider.CreateEmbeddings(ctx, texts)
		if err != nil {
			return err
		}
		if len(result) != len(texts) {
			return Permanent(fmt.Errorf("%w: expected %d, got %d", ErrVectorCountMismatch, len(texts), len(result)))
		}
		if a.dimension > 0 {
			for i, v := range result {
				if len(v) != a.dimension {
					return Permanent(fmt.Errorf("%w: vector %d has %d values, expected %d", ErrDimensionMismatch, i, len(v), a.dimension))
				}
			}
		}
		vectors = result
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings for %d texts: %w", len(texts), err)
	}
	return vectors, nil
}
