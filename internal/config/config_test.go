package config_test

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ergoweb/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ergoweb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 768, cfg.Breakpoint)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "ergogen", cfg.Generator.Command)
	// ergogen's CLI takes the config as a positional and the output
	// directory behind -o; the defaults must follow that shape.
	assert.Equal(t, []string{"{config}", "-o", "{out}"}, cfg.Generator.Args)
	assert.Equal(t, config.Duration(400*time.Millisecond), cfg.Generator.Debounce)
	assert.False(t, cfg.Store.Encryption.Enabled())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
listen: ":3000"
breakpoint: 1024
store:
  backend: redis
  options:
    addr: "redis:6379"
    db: 2
    ttl: 1h
generator:
  command: /usr/local/bin/ergogen
  args: ["{config}", "-o", "{out}"]
  timeout: 90s
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Listen)
	assert.Equal(t, 1024, cfg.Breakpoint)
	assert.Equal(t, []string{"{config}", "-o", "{out}"}, cfg.Generator.Args)
	assert.Equal(t, config.Duration(90*time.Second), cfg.Generator.Timeout)

	opts, err := cfg.Store.RedisOptions()
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, time.Hour, opts.TTL)
}

func TestLoad_FileStoreOptions(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: file
  options:
    path: /var/lib/ergoweb
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	opts, err := cfg.Store.FileOptions()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ergoweb", opts.Path)
}

func TestLoad_UnknownBackend(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: cassandra
`)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_EncryptionKeys(t *testing.T) {
	active := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x01}, 32))
	fallback := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x02}, 32))
	path := writeConfig(t, `
store:
  backend: redis
  encryption:
    key: `+active+`
    fallback_keys: [`+fallback+`]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.True(t, cfg.Store.Encryption.Enabled())

	activeKey, fallbacks, err := cfg.Store.Encryption.Keys()
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0x01}, 32), activeKey)
	require.Len(t, fallbacks, 1)
	assert.Equal(t, bytes.Repeat([]byte{0x02}, 32), fallbacks[0])
}

func TestLoad_EncryptionKeyWrongLength(t *testing.T) {
	short := base64.StdEncoding.EncodeToString([]byte("too-short"))
	path := writeConfig(t, `
store:
  backend: memory
  encryption:
    key: `+short+`
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	_, _, err = cfg.Store.Encryption.Keys()
	assert.ErrorContains(t, err, "32 bytes")
}

func TestLoad_RedisDefaultAddr(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: redis
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	opts, err := cfg.Store.RedisOptions()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
}
