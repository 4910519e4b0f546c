package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var bucketCheckpoints = []byte("checkpoints")

// BoltStore keeps checkpoints in a bbolt database, one key per pipeline
type BoltStore struct {
	db  *bbolt.DB
	key []byte
}

// OpenBoltStore opens (or creates) the database at path. key separates
// checkpoints of different pipelines sharing one file.
func OpenBoltStore(path, key string) (*BoltStore, error) {
	if key == "" {
		key = "default"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCheckpoints)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucketCheckpoints, err)
	}

	return &BoltStore{db: db, key: []byte(key)}, nil
}

// Load returns the saved offset, or None when absent or corrupt
func (s *BoltStore) Load() (int, error) {
	offset := None
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketCheckpoints).Get(s.key)
		if data != nil {
			offset = decode(data)
		}
		return nil
	})
	if err != nil {
		return None, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	return offset, nil
}

// Save stores the offset in a single transaction
func (s *BoltStore) Save(offset int) error {
	data, err := encode(offset)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCheckpoints).Put(s.key, data)
	})
}

// Clear deletes the checkpoint key
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCheckpoints).Delete(s.key)
	})
}

// Close releases the database file lock
func (s *BoltStore) Close() error {
	return s.db.Close()
}
