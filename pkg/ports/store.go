package ports

import (
	"context"

	"github.com/aretw0/ergoweb/pkg/domain"
)

// ConfigStore defines the interface for persisting configurations.
// Global persisted state is injected through this abstraction rather than
// read ambiently, so tests can pre-seed values deterministically.
type ConfigStore interface {
	// Save persists the configuration under the given key, overwriting any
	// previous value.
	Save(ctx context.Context, key string, cfg domain.Configuration) error

	// Load retrieves the configuration for a key.
	// Returns domain.ErrConfigNotFound if no value exists.
	Load(ctx context.Context, key string) (domain.Configuration, error)

	// Delete removes the value for a key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error
}
