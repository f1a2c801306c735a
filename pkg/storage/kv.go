// Package storage provides the persistent key-value map the engine runs on:
// a durable Pebble-backed implementation for the node and an in-memory one
// for tests. The host serializes contract calls, so implementations only need
// to be safe for one writer at a time; MemKV locks anyway since the gateway
// serves reads concurrently.
package storage

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("storage: key not found")

// KV is a flat byte-keyed map surviving across contract calls. Committing or
// rolling back a call's writes as one unit is the host's job; implementations
// here apply writes immediately.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Close() error
}

// MemKV is an in-memory KV for tests and dry-run gateways.
type MemKV struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemKV() *MemKV {
	return &MemKV{m: make(map[string][]byte)}
}

func (s *MemKV) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.m[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (s *MemKV) Set(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	val := make([]byte, len(value))
	copy(val, value)
	s.m[string(key)] = val
	return nil
}

// Delete is idempotent; removing an absent key is not an error.
func (s *MemKV) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, string(key))
	return nil
}

func (s *MemKV) Close() error { return nil }

var _ KV = (*MemKV)(nil)
