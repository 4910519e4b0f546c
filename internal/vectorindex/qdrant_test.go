package vectorindex

import (
	"testing"

	"catalog/internal/models"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointID_Stable(t *testing.T) {
	first := pointID("variant_4001")
	assert.Equal(t, first, pointID("variant_4001"))
	assert.NotEqual(t, first, pointID("variant_4002"))

	_, err := uuid.Parse(first)
	assert.NoError(t, err)
}

func TestToPoint(t *testing.T) {
	point, err := toPoint(models.EmbeddingRecord{
		ID:       "variant_4001",
		Vector:   []float32{0.1, 0.2},
		Metadata: map[string]any{"category": "lips", "price": 24.0, "available": true},
	})
	require.NoError(t, err)

	assert.Equal(t, pointID("variant_4001"), point.GetId().GetUuid())
	assert.NotNil(t, point.GetVectors())

	payload := fromPayload(point.GetPayload())
	assert.Equal(t, map[string]any{
		"id":        "variant_4001",
		"category":  "lips",
		"price":     24.0,
		"available": true,
	}, payload)
}

func TestToPoint_InvalidMetadata(t *testing.T) {
	_, err := toPoint(models.EmbeddingRecord{
		ID:       "variant_1",
		Vector:   []float32{1},
		Metadata: map[string]any{"bad": make(chan int)},
	})
	assert.Error(t, err)
}

func TestBuildFilter(t *testing.T) {
	lo, hi := 10.0, 30.0

	tests := []struct {
		name       string
		filter     Filter
		conditions int
	}{
		{name: "categories", filter: Filter{Categories: []string{"lips", "face"}}, conditions: 1},
		{name: "price", filter: Filter{MinPrice: &lo, MaxPrice: &hi}, conditions: 1},
		{name: "min only", filter: Filter{MinPrice: &lo}, conditions: 1},
		{name: "all", filter: Filter{Categories: []string{"lips"}, MaxPrice: &hi, AvailableOnly: true}, conditions: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, buildFilter(tt.filter).GetMust(), tt.conditions)
		})
	}
}

func TestDistanceMapping(t *testing.T) {
	for _, metric := range []string{MetricCosine, MetricDotProduct, MetricEuclidean} {
		d, err := toDistance(metric)
		require.NoError(t, err)
		assert.Equal(t, metric, fromDistance(d))
	}

	_, err := toDistance("hamming")
	assert.Error(t, err)
	assert.NotEmpty(t, fromDistance(qdrant.Distance_Manhattan))
}

func TestReadyStatus(t *testing.T) {
	tests := []struct {
		status qdrant.CollectionStatus
		ready  bool
	}{
		{status: qdrant.CollectionStatus_Green, ready: true},
		{status: qdrant.CollectionStatus_Yellow, ready: true},
		{status: qdrant.CollectionStatus_Grey, ready: true},
		{status: qdrant.CollectionStatus_Red, ready: false},
		{status: qdrant.CollectionStatus_UnknownCollectionStatus, ready: false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.ready, readyStatus(tt.status))
		})
	}
}
