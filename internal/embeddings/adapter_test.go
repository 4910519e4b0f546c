package embeddings

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns a vector whose first value encodes the text position
type fakeProvider struct {
	dimension int
	failures  int
	calls     [][]string
	short     bool
}

func (f *fakeProvider) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, append([]string(nil), texts...))
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("429 rate limit")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, f.dimension)
		_, _ = fmt.Sscanf(text, "text-%f", &v[0])
		vectors[i] = v
	}
	if f.short {
		vectors = vectors[:len(vectors)-1]
	}
	return vectors, nil
}

func noSleepPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		BaseDelay:   time.Second,
		Sleep:       func(ctx context.Context, d time.Duration) error { return nil },
	}
}

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("text-%d", i)
	}
	return out
}

func TestAdapter_PreservesOrderAcrossChunks(t *testing.T) {
	provider := &fakeProvider{dimension: 4}
	adapter := NewAdapter(provider, noSleepPolicy(3), 100, 4, zerolog.Nop())

	vectors, err := adapter.Embed(context.Background(), texts(250))

	require.NoError(t, err)
	require.Len(t, vectors, 250)
	for i, v := range vectors {
		assert.Equal(t, float32(i), v[0])
	}
	require.Len(t, provider.calls, 3)
	assert.Len(t, provider.calls[0], 100)
	assert.Len(t, provider.calls[2], 50)
}

func TestAdapter_RetriesTransientFailures(t *testing.T) {
	provider := &fakeProvider{dimension: 4, failures: 2}
	adapter := NewAdapter(provider, noSleepPolicy(3), 100, 4, zerolog.Nop())

	vectors, err := adapter.Embed(context.Background(), texts(5))

	require.NoError(t, err)
	assert.Len(t, vectors, 5)
	assert.Len(t, provider.calls, 3)
}

func TestAdapter_ExhaustedRetries(t *testing.T) {
	provider := &fakeProvider{dimension: 4, failures: 10}
	adapter := NewAdapter(provider, noSleepPolicy(3), 100, 4, zerolog.Nop())

	vectors, err := adapter.Embed(context.Background(), texts(5))

	require.Error(t, err)
	assert.Nil(t, vectors)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Contains(t, err.Error(), "429 rate limit")
	assert.Len(t, provider.calls, 3)
}

func TestAdapter_CountMismatchIsNotRetried(t *testing.T) {
	provider := &fakeProvider{dimension: 4, short: true}
	adapter := NewAdapter(provider, noSleepPolicy(3), 100, 4, zerolog.Nop())

	_, err := adapter.Embed(context.Background(), texts(3))

	assert.ErrorIs(t, err, ErrVectorCountMismatch)
	assert.Len(t, provider.calls, 1)
}

func TestAdapter_DimensionMismatch(t *testing.T) {
	provider := &fakeProvider{dimension: 3}
	adapter := NewAdapter(provider, noSleepPolicy(3), 100, 1536, zerolog.Nop())

	_, err := adapter.Embed(context.Background(), texts(2))

	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Len(t, provider.calls, 1)
}

func TestAdapter_EmptyInput(t *testing.T) {
	provider := &fakeProvider{dimension: 4}
	adapter := NewAdapter(provider, noSleepPolicy(3), 100, 4, zerolog.Nop())

	vectors, err := adapter.Embed(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Empty(t, provider.calls)
}
