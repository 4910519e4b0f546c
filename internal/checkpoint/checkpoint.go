// Package checkpoint persists the offset of the last row the ingestion
// pipeline finished, so an interrupted run resumes where it stopped.
package checkpoint

import (
	"encoding/json"
	"fmt"

	"catalog/internal/config"
)

// None is the offset reported when nothing has been processed
const None = -1

// Store is a durable "last processed offset". Load reports None when no state
// exists or the stored state cannot be decoded.
type Store interface {
	Load() (int, error)
	Save(offset int) error
	Clear() error
}

// State is the persisted document
type State struct {
	LastProcessedIndex int `json:"last_processed_index"`
}

func encode(offset int) ([]byte, error) {
	return json.Marshal(State{LastProcessedIndex: offset})
}

// decode returns None for anything that is not a valid state document
func decode(data []byte) int {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return None
	}
	field, ok := raw["last_processed_index"]
	if !ok {
		return None
	}
	var offset int
	if err := json.Unmarshal(field, &offset); err != nil || offset < None {
		return None
	}
	return offset
}

// Closer is implemented by stores holding an open handle
type Closer interface {
	Close() error
}

// NewFromConfig opens the configured checkpoint backend
func NewFromConfig(cfg *config.Config) (Store, error) {
	switch cfg.CheckpointBackend {
	case config.CheckpointBackendFile, "":
		return NewFileStore(cfg.CheckpointFile), nil
	case config.CheckpointBackendBolt:
		store, err := OpenBoltStore(cfg.CheckpointFile, cfg.IndexName)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported checkpoint backend %q", cfg.CheckpointBackend)
	}
}
