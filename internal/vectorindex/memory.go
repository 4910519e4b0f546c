package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"catalog/internal/models"
)

type memoryCollection struct {
	spec    Spec
	records map[string]models.EmbeddingRecord
}

// MemoryIndex is an in-process Index used for dry runs and tests. Upserts
// overwrite by id like the managed backends do.
type MemoryIndex struct {
	mu          sync.RWMutex
	name        string
	collections map[string]*memoryCollection
	upserts     int

	// UpsertHook, when set, runs before every upsert call (1-based call
	// number) and aborts the call if it returns an error.
	UpsertHook func(call int, records []models.EmbeddingRecord) error
}

// NewMemoryIndex returns an empty deployment bound to name
func NewMemoryIndex(name string) *MemoryIndex {
	return &MemoryIndex{
		name:        name,
		collections: make(map[string]*memoryCollection),
	}
}

func (m *MemoryIndex) Name() string {
	return m.name
}

func (m *MemoryIndex) ListIndexes(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryIndex) CreateIndex(ctx context.Context, spec Spec) error {
	if spec.Dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", spec.Dimension)
	}
	if _, err := scorer(spec.Metric); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.collections[spec.Name]; exists {
		return fmt.Errorf("index %s already exists", spec.Name)
	}
	m.collections[spec.Name] = &memoryCollection{
		spec:    spec,
		records: make(map[string]models.EmbeddingRecord),
	}
	return nil
}

func (m *MemoryIndex) Describe(ctx context.Context) (Description, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[m.name]
	if !ok {
		return Description{}, fmt.Errorf("%w: %s", ErrIndexNotFound, m.name)
	}
	return Description{Name: m.name, Dimension: c.spec.Dimension, Metric: c.spec.Metric, Ready: true}, nil
}

func (m *MemoryIndex) DescribeStats(ctx context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[m.name]
	if !ok {
		return Stats{}, fmt.Errorf("%w: %s", ErrIndexNotFound, m.name)
	}
	return Stats{TotalVectorCount: uint64(len(c.records)), Dimension: c.spec.Dimension}, nil
}

func (m *MemoryIndex) Upsert(ctx context.Context, records []models.EmbeddingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.upserts++
	if m.UpsertHook != nil {
		if err := m.UpsertHook(m.upserts, records); err != nil {
			return err
		}
	}

	c, ok := m.collections[m.name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, m.name)
	}

	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record without id")
		}
		if len(r.Vector) != c.spec.Dimension {
			return fmt.Errorf("record %s has dimension %d, index expects %d", r.ID, len(r.Vector), c.spec.Dimension)
		}
		if err := validateMetadata(r.Metadata); err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
	}

	for _, r := range records {
		c.records[r.ID] = models.EmbeddingRecord{
			ID:       r.ID,
			Vector:   append([]float32(nil), r.Vector...),
			Metadata: copyMetadata(r.Metadata),
		}
	}
	return nil
}

func (m *MemoryIndex) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[m.name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, m.name)
	}
	c.records = make(map[string]models.EmbeddingRecord)
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, q Query) ([]models.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[m.name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, m.name)
	}
	if len(q.Vector) != c.spec.Dimension {
		return nil, fmt.Errorf("query has dimension %d, index expects %d", len(q.Vector), c.spec.Dimension)
	}
	score, err := scorer(c.spec.Metric)
	if err != nil {
		return nil, err
	}

	matches := make([]models.Match, 0, len(c.records))
	for _, r := range c.records {
		if !matchesFilter(r.Metadata, q.Filter) {
			continue
		}
		match := models.Match{ID: r.ID, Score: float32(score(q.Vector, r.Vector))}
		if q.IncludeMetadata {
			match.Metadata = copyMetadata(r.Metadata)
		}
		matches = append(matches, match)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})

	if q.TopK > 0 && len(matches) > q.TopK {
		matches = matches[:q.TopK]
	}
	return matches, nil
}

// Record returns a stored record by id
func (m *MemoryIndex) Record(id string) (models.EmbeddingRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[m.name]
	if !ok {
		return models.EmbeddingRecord{}, false
	}
	r, ok := c.records[id]
	return r, ok
}

// UpsertCalls returns how many upsert calls were made
func (m *MemoryIndex) UpsertCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.upserts
}

func matchesFilter(metadata map[string]any, f Filter) bool {
	if len(f.Categories) > 0 {
		category, _ := metadata["category"].(string)
		found := false
		for _, c := range f.Categories {
			if c == category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price, ok := metadata["price"].(float64)
		if !ok {
			return false
		}
		if f.MinPrice != nil && price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && price > *f.MaxPrice {
			return false
		}
	}
	if f.AvailableOnly {
		available, _ := metadata["available"].(bool)
		if !available {
			return false
		}
	}
	return true
}

func validateMetadata(metadata map[string]any) error {
	for key, value := range metadata {
		switch value.(type) {
		case string, bool, float64, float32, int, int64:
		default:
			return fmt.Errorf("metadata %q has unsupported type %T", key, value)
		}
	}
	return nil
}

func copyMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}

// scorer returns a higher-is-closer scoring function for the metric.
// Euclidean scores are negated distances.
func scorer(metric string) (func(a, b []float32) float64, error) {
	switch strings.ToLower(metric) {
	case MetricCosine:
		return cosine, nil
	case MetricDotProduct:
		return dot, nil
	case MetricEuclidean:
		return func(a, b []float32) float64 {
			var sum float64
			for i := range a {
				d := float64(a[i]) - float64(b[i])
				sum += d * d
			}
			return -math.Sqrt(sum)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported metric %q", metric)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func cosine(a, b []float32) float64 {
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
