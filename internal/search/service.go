// Package search answers free-text product recommendation queries against
// the vector index.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog/internal/cache"
	"catalog/internal/embeddings"
	"catalog/internal/models"
	"catalog/internal/utils"
	"catalog/internal/vectorindex"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
)

const (
	DefaultTopK = 30
	MaxTopK     = 100
)

var (
	// ErrEmptyQuery is returned for blank query text
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrInvalidPriceRange is returned when min_price exceeds max_price
	ErrInvalidPriceRange = errors.New("min_price must not exceed max_price")
)

// tokenFields are the metadata fields searched for shade tokens
var tokenFields = []string{
	models.ColumnProductName,
	models.ColumnVariantTitle,
	models.ColumnVariantSKU,
	models.ColumnHandle,
}

// Service embeds queries and ranks catalog variants by similarity
type Service struct {
	embedder    embeddings.Embedder
	index       vectorindex.Index
	queries     *cache.Cache[[]float32]
	defaultTopK int
	logger      zerolog.Logger
}

// NewService creates a search service. queries may be nil to disable caching.
func NewService(embedder embeddings.Embedder, index vectorindex.Index, queries *cache.Cache[[]float32], defaultTopK int, logger zerolog.Logger) *Service {
	if defaultTopK <= 0 || defaultTopK > MaxTopK {
		defaultTopK = DefaultTopK
	}
	return &Service{
		embedder:    embedder,
		index:       index,
		queries:     queries,
		defaultTopK: defaultTopK,
		logger:      logger.With().Str("component", "search").Logger(),
	}
}

// Recommend returns the variants closest to the query that pass the filters
func (s *Service) Recommend(ctx context.Context, req models.RecommendRequest) (*models.RecommendResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		return nil, ErrInvalidPriceRange
	}

	vector, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	filter := vectorindex.Filter{
		Categories:    s.categories(req.Filters),
		MinPrice:      req.MinPrice,
		MaxPrice:      req.MaxPrice,
		AvailableOnly: req.AvailableOnly,
	}

	matches, err := s.index.Query(ctx, vectorindex.Query{
		Vector:          vector,
		TopK:            s.topK(req.TopK),
		Filter:          filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("index query failed: %w", err)
	}

	refined, fallback := refineByShade(matches, utils.ShadeTokens(query))
	if fallback {
		s.logger.Debug().Str("query", query).Msg("Shade tokens matched nothing, keeping similarity results")
	}

	s.logger.Info().
		Str("query", query).
		Int("matches", len(refined)).
		Bool("fallback", fallback).
		Msg("Recommendation served")

	return &models.RecommendResponse{Matches: refined, Fallback: fallback}, nil
}

func (s *Service) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if s.queries != nil {
		if vector, ok := s.queries.Get(query); ok {
			return vector, nil
		}
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1, got %d", embeddings.ErrVectorCountMismatch, len(vectors))
	}

	if s.queries != nil {
		s.queries.Set(query, vectors[0])
	}
	return vectors[0], nil
}

func (s *Service) topK(requested int) int {
	switch {
	case requested <= 0:
		return s.defaultTopK
	case requested > MaxTopK:
		return MaxTopK
	default:
		return requested
	}
}

// categories keeps each filter as given and adds its case-folded form, so
// "Face" matches catalog slugs like "face".
func (s *Service) categories(filters []string) []string {
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(filters)*2)
	var out []string
	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, f := range filters {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		add(f)
		add(fold.String(f))
	}
	return out
}

// refineByShade keeps matches that contain every required token. When none
// do, matches are returned unchanged and fallback is true.
func refineByShade(matches []models.Match, required []string) ([]models.Match, bool) {
	if len(required) == 0 || len(matches) == 0 {
		return matches, false
	}

	kept := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		values := make([]string, 0, len(tokenFields))
		for _, field := range tokenFields {
			if v, ok := m.Metadata[field].(string); ok {
				values = append(values, v)
			}
		}
		if ok, _ := utils.ContainsAllTokens(utils.BuildTokenSet(values...), required); ok {
			kept = append(kept, m)
		}
	}

	if len(kept) == 0 {
		return matches, true
	}
	return kept, false
}
