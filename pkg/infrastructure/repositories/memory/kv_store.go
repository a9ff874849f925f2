package memory

import (
	"context"
	"sync"

	"github.com/vsinha/fleetdash/pkg/domain/repositories"
)

// KeyValueStore keeps persisted session state in process memory
type KeyValueStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewKeyValueStore creates an empty store
func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{data: map[string]string{}}
}

// Verify interface compliance
var _ repositories.KeyValueStore = (*KeyValueStore)(nil)

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *KeyValueStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len returns the number of stored keys
func (s *KeyValueStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
