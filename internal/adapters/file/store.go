package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/ergoweb/pkg/domain"
)

// Store implements ports.ConfigStore using the local filesystem.
// It stores configurations as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".ergoweb/configs".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".ergoweb", "configs")
	}
	return &Store{BasePath: basePath}
}

// Save persists the configuration to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it
// to the destination.
func (s *Store) Save(ctx context.Context, key string, cfg domain.Configuration) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure config directory: %w", err)
	}

	destPath := filepath.Join(s.BasePath, key+".json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	// Temp file in the same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+key+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // No-op once renamed.
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows os.Rename fails if dest exists; the delete+rename window is
	// acceptable compared to a partial write.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing config for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}

	return nil
}

// Load retrieves the configuration from a JSON file.
func (s *Store) Load(ctx context.Context, key string) (domain.Configuration, error) {
	if key == "" {
		return domain.Configuration{}, fmt.Errorf("key cannot be empty")
	}

	filePath := filepath.Join(s.BasePath, key+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Configuration{}, domain.ErrConfigNotFound
		}
		return domain.Configuration{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg domain.Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.Configuration{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// Delete removes the configuration file.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	filePath := filepath.Join(s.BasePath, key+".json")

	err := os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}

	return nil
}
