package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// HealthResponse represents a basic health check response
// @Description Health check response
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`                 // Health status
	Timestamp time.Time `json:"timestamp" example:"2023-01-01T00:00:00Z"` // Timestamp of the check
	Version   string    `json:"version" example:"1.0.0"`                  // Application version
}

// IndexHealthResponse represents a vector index health check response
// @Description Vector index health check response
type IndexHealthResponse struct {
	Status      string        `json:"status" example:"healthy"`                   // Health status
	Timestamp   time.Time     `json:"timestamp" example:"2023-01-01T00:00:00Z"`   // Timestamp of the check
	Index       string        `json:"index" example:"rare-beauty-products"`       // Index name
	VectorCount uint64        `json:"vector_count" example:"1200"`                // Total vectors stored
	Dimension   int           `json:"dimension" example:"1536"`                   // Vector dimension
	Latency     time.Duration `json:"latency" swaggertype:"string" example:"1ms"` // Stats call latency
	Error       string        `json:"error,omitempty" example:""`                 // Error message if any
}

// RecommendRequest represents the request body for the recommend endpoint
// @Description Product recommendation request
type RecommendRequest struct {
	Query         string   `json:"query" example:"dewy summer glow"`      // Free text query
	Filters       []string `json:"filters,omitempty" example:"face,lips"` // Category filter (any of)
	MinPrice      *float64 `json:"min_price,omitempty" example:"0"`       // Minimum price
	MaxPrice      *float64 `json:"max_price,omitempty" example:"50"`      // Maximum price
	AvailableOnly bool     `json:"available_only,omitempty"`              // Only purchasable variants
	TopK          int      `json:"top_k,omitempty" example:"30"`          // Number of matches
}

// Match is one ranked recommendation. On the wire the stored metadata is
// flattened next to id and score.
// @Description Ranked product match; stored product metadata fields appear alongside id and score
type Match struct {
	ID       string         `json:"id" example:"variant_4321"` // Record id
	Score    float32        `json:"score" example:"0.82"`      // Similarity score
	Metadata map[string]any `json:"-"`                         // Stored product metadata
}

// MarshalJSON writes metadata keys at the top level. id and score take
// precedence over metadata keys of the same name.
func (m Match) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Metadata)+2)
	for k, v := range m.Metadata {
		out[k] = v
	}
	out["id"] = m.ID
	out["score"] = m.Score
	return json.Marshal(out)
}

// UnmarshalJSON collects every key other than id and score into Metadata
func (m *Match) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Match{}
	if v, ok := raw["id"]; ok {
		id, isString := v.(string)
		if !isString {
			return fmt.Errorf("match id: expected string, got %T", v)
		}
		m.ID = id
		delete(raw, "id")
	}
	if v, ok := raw["score"]; ok {
		score, isNumber := v.(float64)
		if !isNumber {
			return fmt.Errorf("match score: expected number, got %T", v)
		}
		m.Score = float32(score)
		delete(raw, "score")
	}
	if len(raw) > 0 {
		m.Metadata = raw
	}
	return nil
}

// RecommendResponse represents the response from the recommend endpoint
// @Description Product recommendation response
type RecommendResponse struct {
	Matches  []Match `json:"matches"`                    // Ranked matches
	Fallback bool    `json:"fallback,omitempty"`         // Shade tokens matched nothing, similarity order returned
	Error    string  `json:"error,omitempty" example:""` // Error message if any
}
