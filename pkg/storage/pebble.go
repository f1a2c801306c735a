package storage

import (
	"fmt"

	"github.com/cockroachdb/pebble"
)

// PebbleKV is the durable KV used by the node.
type PebbleKV struct {
	db *pebble.DB
}

// NewPebbleKV opens a Pebble database at the given path.
func NewPebbleKV(path string) (*PebbleKV, error) {
	opts := &pebble.Options{
		Cache:                 pebble.NewCache(128 << 20), // 128MB cache
		MemTableSize:          64 << 20,                   // 64MB memtable
		L0CompactionThreshold: 2,
		L0StopWritesThreshold: 12,
		LBaseMaxBytes:         64 << 20,
		MaxOpenFiles:          1000,
		BytesPerSync:          512 << 10,
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db at %s: %w", path, err)
	}
	return &PebbleKV{db: db}, nil
}

func (s *PebbleKV) Get(key []byte) ([]byte, error) {
	val, closer, err := s.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	defer closer.Close()

	// The returned slice is only valid until the closer closes.
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (s *PebbleKV) Set(key, value []byte) error {
	if err := s.db.Set(key, value, pebble.Sync); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Delete is idempotent; removing an absent key is not an error.
func (s *PebbleKV) Delete(key []byte) error {
	if err := s.db.Delete(key, pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

func (s *PebbleKV) Close() error { return s.db.Close() }

var _ KV = (*PebbleKV)(nil)
