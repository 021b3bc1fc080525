package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// MemoryStore keeps state for the life of the process only. Values are kept
// encoded so a load never aliases what was saved.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	logger *log.Logger
}

func NewMemoryStore(logger *log.Logger) *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
		logger: logger,
	}
}

func (s *MemoryStore) Load(_ context.Context, key string, out any) (bool, error) {
	s.mu.RLock()
	data, ok := s.values[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	return decode(s.logger, key, data, out), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %q failed: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = data
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
