package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog/internal/config"
	"catalog/internal/models"
	"catalog/internal/search"
	"catalog/internal/vectorindex"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unitEmbedder struct{}

func (unitEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()

	idx := vectorindex.NewMemoryIndex("products")
	require.NoError(t, idx.CreateIndex(ctx, vectorindex.Spec{Name: "products", Dimension: 2, Metric: vectorindex.MetricCosine}))
	require.NoError(t, idx.Upsert(ctx, []models.EmbeddingRecord{
		{ID: "variant_1", Vector: []float32{1, 0}, Metadata: map[string]any{"product_name": "Soft Pinch Liquid Blush", "category": "cheek"}},
	}))

	svc := search.NewService(unitEmbedder{}, idx, nil, 0, zerolog.Nop())
	srv := New(&config.Config{Version: "test"}, idx, svc, zerolog.Nop())
	srv.Initialize()
	return srv
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "health", method: http.MethodGet, path: "/healthz", status: http.StatusOK},
		{name: "index health", method: http.MethodGet, path: "/healthz/index", status: http.StatusOK},
		{name: "root", method: http.MethodGet, path: "/api/", status: http.StatusOK},
		{name: "recommend", method: http.MethodPost, path: "/api/recommend", body: `{"query":"blush"}`, status: http.StatusOK},
		{name: "recommend empty query", method: http.MethodPost, path: "/api/recommend", body: `{"query":" "}`, status: http.StatusBadRequest},
		{name: "swagger doc", method: http.MethodGet, path: "/swagger/doc.json", status: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/missing", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()

			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRecommendRoute_ReturnsMetadata(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(`{"query":"pink blush","filters":["Cheek"]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "variant_1", resp.Matches[0].ID)
	assert.Equal(t, "cheek", resp.Matches[0].Metadata["category"])

	var raw struct {
		Matches []map[string]any `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw.Matches, 1)
	assert.Equal(t, "Soft Pinch Liquid Blush", raw.Matches[0]["product_name"])
	assert.NotContains(t, raw.Matches[0], "metadata")
}
