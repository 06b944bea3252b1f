package memory

import (
	"context"
	"sync"

	"github.com/aretw0/ergoweb/pkg/domain"
)

// Store implements ports.ConfigStore in memory.
// Safe for concurrent use. Tests pre-seed it to simulate a persisted
// configuration present before startup.
type Store struct {
	data map[string]domain.Configuration
	mu   sync.RWMutex
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		data: make(map[string]domain.Configuration),
	}
}

// Save persists the configuration in memory.
func (s *Store) Save(ctx context.Context, key string, cfg domain.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = cfg
	return nil
}

// Load retrieves the configuration from memory.
func (s *Store) Load(ctx context.Context, key string) (domain.Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.data[key]
	if !ok {
		return domain.Configuration{}, domain.ErrConfigNotFound
	}
	return cfg, nil
}

// Delete removes the configuration.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
