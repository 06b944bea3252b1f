package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/ergoweb"
	"github.com/aretw0/ergoweb/internal/adapters/file"
	"github.com/aretw0/ergoweb/internal/adapters/memory"
	"github.com/aretw0/ergoweb/internal/adapters/process"
	"github.com/aretw0/ergoweb/internal/adapters/redis"
	"github.com/aretw0/ergoweb/internal/config"
	"github.com/aretw0/ergoweb/pkg/domain"
	"github.com/aretw0/ergoweb/pkg/persistence/middleware"
	"github.com/aretw0/ergoweb/pkg/ports"
)

// buildStore resolves the configured store backend and wraps it with the
// encryption middleware when a key is configured.
func buildStore(cfg config.Config) (ports.ConfigStore, error) {
	var store ports.ConfigStore
	switch cfg.Store.Backend {
	case "memory", "":
		store = memory.New()
	case "file":
		opts, err := cfg.Store.FileOptions()
		if err != nil {
			return nil, err
		}
		store = file.New(opts.Path)
	case "redis":
		opts, err := cfg.Store.RedisOptions()
		if err != nil {
			return nil, err
		}
		storeOpts := []redis.Option{}
		if opts.Prefix != "" {
			storeOpts = append(storeOpts, redis.WithPrefix(opts.Prefix))
		}
		if opts.TTL > 0 {
			storeOpts = append(storeOpts, redis.WithTTL(opts.TTL))
		}
		store = redis.New(opts.Addr, opts.Password, opts.DB, storeOpts...)
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Store.Backend)
	}

	if cfg.Store.Encryption.Enabled() {
		active, fallbacks, err := cfg.Store.Encryption.Keys()
		if err != nil {
			return nil, err
		}
		store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		})(store)
	}

	return store, nil
}

// buildGenerator resolves the external generator command.
func buildGenerator(cfg config.Config) ports.Generator {
	opts := []process.Option{}
	if len(cfg.Generator.Args) > 0 {
		opts = append(opts, process.WithArgs(cfg.Generator.Args...))
	}
	if cfg.Generator.Timeout > 0 {
		opts = append(opts, process.WithTimeout(time.Duration(cfg.Generator.Timeout)))
	}
	return process.New(cfg.Generator.Command, opts...)
}

// buildStudio assembles a studio session from the loaded configuration.
func buildStudio(cfg config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*ergoweb.Studio, error) {
	store, err := buildStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build store: %w", err)
	}

	return ergoweb.New(
		ergoweb.WithStore(store),
		ergoweb.WithGenerator(buildGenerator(cfg)),
		ergoweb.WithLogger(logger),
		ergoweb.WithLifecycleHooks(hooks),
		ergoweb.WithBreakpoint(cfg.Breakpoint),
		ergoweb.WithDebounce(time.Duration(cfg.Generator.Debounce)),
	), nil
}
