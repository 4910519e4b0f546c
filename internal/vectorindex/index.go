// Package vectorindex is the boundary to the managed vector database that
// stores product embeddings and answers similarity queries.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog/internal/config"
	"catalog/internal/models"

	"github.com/rs/zerolog"
)

// Similarity metrics
const (
	MetricCosine     = "cosine"
	MetricDotProduct = "dotproduct"
	MetricEuclidean  = "euclidean"
)

var (
	// ErrIndexMismatch means an existing index has a different dimension or metric
	ErrIndexMismatch = errors.New("index configuration mismatch")
	// ErrIndexNotReady means the index did not become ready before the deadline
	ErrIndexNotReady = errors.New("index not ready")
	// ErrIndexNotFound means the bound index does not exist
	ErrIndexNotFound = errors.New("index not found")
)

// Spec describes an index to create
type Spec struct {
	Name      string
	Dimension int
	Metric    string
}

// Description reports the configuration and readiness of an existing index
type Description struct {
	Name      string
	Dimension int
	Metric    string
	Ready     bool
}

// Stats summarizes index content
type Stats struct {
	TotalVectorCount uint64
	Dimension        int
}

// Filter restricts query matches by metadata. Zero values apply no restriction.
type Filter struct {
	Categories    []string
	MinPrice      *float64
	MaxPrice      *float64
	AvailableOnly bool
}

// IsEmpty reports whether the filter restricts nothing
func (f Filter) IsEmpty() bool {
	return len(f.Categories) == 0 && f.MinPrice == nil && f.MaxPrice == nil && !f.AvailableOnly
}

// Query is a similarity search request
type Query struct {
	Vector          []float32
	TopK            int
	Filter          Filter
	IncludeMetadata bool
}

// Index is bound to one named index. Admin calls (ListIndexes, CreateIndex)
// act on the whole deployment.
type Index interface {
	Name() string
	ListIndexes(ctx context.Context) ([]string, error)
	CreateIndex(ctx context.Context, spec Spec) error
	Describe(ctx context.Context) (Description, error)
	DescribeStats(ctx context.Context) (Stats, error)
	// Upsert inserts or overwrites records by id
	Upsert(ctx context.Context, records []models.EmbeddingRecord) error
	DeleteAll(ctx context.Context) error
	Query(ctx context.Context, q Query) ([]models.Match, error)
}

// Ensure verifies that the bound index exists with the expected dimension and
// metric, creating it when absent, and waits until it is ready.
func Ensure(ctx context.Context, idx Index, spec Spec, readyTimeout time.Duration, logger zerolog.Logger) error {
	if spec.Name == "" {
		spec.Name = idx.Name()
	}
	logger.Info().Str("index", spec.Name).Msg("Setting up vector index")

	names, err := idx.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}

	exists := false
	for _, name := range names {
		if name == spec.Name {
			exists = true
			break
		}
	}

	if !exists {
		logger.Info().Str("index", spec.Name).Int("dimension", spec.Dimension).Str("metric", spec.Metric).Msg("Creating new index")
		if err := idx.CreateIndex(ctx, spec); err != nil {
			return fmt.Errorf("failed to create index %s: %w", spec.Name, err)
		}
	} else {
		logger.Info().Str("index", spec.Name).Msg("Index already exists")
	}

	desc, err := WaitReady(ctx, idx, readyTimeout, time.Second)
	if err != nil {
		return err
	}

	if desc.Dimension != spec.Dimension {
		return fmt.Errorf("%w: %s has dimension %d, expected %d", ErrIndexMismatch, spec.Name, desc.Dimension, spec.Dimension)
	}
	if desc.Metric != spec.Metric {
		return fmt.Errorf("%w: %s uses metric %s, expected %s", ErrIndexMismatch, spec.Name, desc.Metric, spec.Metric)
	}

	logger.Info().Str("index", spec.Name).Msg("Index ready")
	return nil
}

// WaitReady polls Describe until the index reports ready or timeout elapses
func WaitReady(ctx context.Context, idx Index, timeout, interval time.Duration) (Description, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		desc, err := idx.Describe(ctx)
		if err == nil && desc.Ready {
			return desc, nil
		}

		select {
		case <-ctx.Done():
			if err != nil {
				return Description{}, fmt.Errorf("%w: %s: %w", ErrIndexNotReady, idx.Name(), err)
			}
			return Description{}, fmt.Errorf("%w: %s", ErrIndexNotReady, idx.Name())
		case <-ticker.C:
		}
	}
}

// NewFromConfig opens the configured backend bound to cfg.IndexName
func NewFromConfig(cfg *config.Config, logger zerolog.Logger) (Index, error) {
	switch cfg.IndexBackend {
	case config.IndexBackendQdrant, "":
		idx, err := NewQdrantIndex(QdrantOptions{
			Host:   cfg.QdrantHost,
			Port:   cfg.QdrantPort,
			APIKey: cfg.QdrantAPIKey,
			UseTLS: cfg.QdrantUseTLS,
		}, cfg.IndexName, logger)
		if err != nil {
			return nil, err
		}
		return idx, nil
	case config.IndexBackendMemory:
		return NewMemoryIndex(cfg.IndexName), nil
	default:
		return nil, fmt.Errorf("unsupported index backend %q", cfg.IndexBackend)
	}
}

// SpecFromConfig builds the index spec expected by the pipeline
func SpecFromConfig(cfg *config.Config) Spec {
	return Spec{
		Name:      cfg.IndexName,
		Dimension: cfg.EmbeddingDimension,
		Metric:    cfg.IndexMetric,
	}
}
