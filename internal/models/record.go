package models

// EmbeddingRecord is the unit written to the vector index.
// Metadata values are limited to string, float64 and bool.
type EmbeddingRecord struct {
	ID       string         `json:"id"`
	Vector   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
