// Package config loads the studio's YAML configuration file and decodes
// backend-specific option maps into typed structs.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP bind address.
	Listen string `yaml:"listen"`

	// Breakpoint is the constrained-viewport width threshold in pixels.
	Breakpoint int `yaml:"breakpoint"`

	Store     StoreConfig     `yaml:"store"`
	Generator GeneratorConfig `yaml:"generator"`
}

// StoreConfig selects and parameterizes the configuration store backend.
type StoreConfig struct {
	// Backend is one of "memory", "file", "redis".
	Backend string `yaml:"backend"`

	// Options carries backend-specific settings, decoded on demand into
	// the matching typed struct.
	Options map[string]any `yaml:"options"`

	// Encryption enables AES-256-GCM encryption of the stored
	// configuration, for shared backends like Redis.
	Encryption EncryptionConfig `yaml:"encryption"`
}

// EncryptionConfig parameterizes at-rest encryption of the store.
type EncryptionConfig struct {
	// Key is the active key: 32 bytes, base64-encoded.
	Key string `yaml:"key"`

	// FallbackKeys are previous keys tried on decryption, enabling
	// zero-downtime rotation.
	FallbackKeys []string `yaml:"fallback_keys"`
}

// Enabled reports whether an active key is configured.
func (e EncryptionConfig) Enabled() bool {
	return e.Key != ""
}

// Keys decodes the active and fallback keys.
func (e EncryptionConfig) Keys() (active []byte, fallbacks [][]byte, err error) {
	active, err = decodeKey(e.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	for i, k := range e.FallbackKeys {
		decoded, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid fallback key %d: %w", i, err)
		}
		fallbacks = append(fallbacks, decoded)
	}
	return active, fallbacks, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes (AES-256), got %d", len(key))
	}
	return key, nil
}

// FileOptions parameterizes the file store backend.
type FileOptions struct {
	Path string `mapstructure:"path"`
}

// RedisOptions parameterizes the redis store backend.
type RedisOptions struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// GeneratorConfig parameterizes the external generator command.
type GeneratorConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout Duration `yaml:"timeout"`

	// Debounce delays each run so rapid edits coalesce into a single
	// invocation of the command.
	Debounce Duration `yaml:"debounce"`
}

// Duration wraps time.Duration so YAML accepts human-readable values like
// "90s" or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the built-in configuration: in-memory store, ergogen on
// PATH, standard breakpoint.
func Default() Config {
	return Config{
		Listen:     ":8080",
		Breakpoint: 768,
		Store: StoreConfig{
			Backend: "memory",
		},
		Generator: GeneratorConfig{
			Command:  "ergogen",
			Args:     []string{"{config}", "-o", "{out}"},
			Timeout:  Duration(2 * time.Minute),
			Debounce: Duration(400 * time.Millisecond),
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	switch cfg.Store.Backend {
	case "memory", "file", "redis":
	default:
		return Config{}, fmt.Errorf("unknown store backend: %q", cfg.Store.Backend)
	}

	return cfg, nil
}

// FileOptions decodes the store option map for the file backend.
func (s StoreConfig) FileOptions() (FileOptions, error) {
	var opts FileOptions
	if err := mapstructure.Decode(s.Options, &opts); err != nil {
		return FileOptions{}, fmt.Errorf("invalid file store options: %w", err)
	}
	return opts, nil
}

// RedisOptions decodes the store option map for the redis backend.
func (s StoreConfig) RedisOptions() (RedisOptions, error) {
	var opts RedisOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &opts,
	})
	if err != nil {
		return RedisOptions{}, err
	}
	if err := decoder.Decode(s.Options); err != nil {
		return RedisOptions{}, fmt.Errorf("invalid redis store options: %w", err)
	}
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	return opts, nil
}
