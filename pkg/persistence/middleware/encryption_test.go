package middleware_test

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ergoweb/internal/adapters/memory"
	"github.com/aretw0/ergoweb/pkg/domain"
	"github.com/aretw0/ergoweb/pkg/persistence/middleware"
	"github.com/aretw0/ergoweb/pkg/ports"
)

func newKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	wrapped := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: newKey(t),
	})(memory.New())

	ports.RunConfigStoreContract(t, wrapped)
}

func TestEncryptionMiddleware_OpaqueAtRest(t *testing.T) {
	backend := memory.New()
	wrapped := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: newKey(t),
	})(backend)

	ctx := context.Background()
	source := "points:\n  zones:\n    matrix:\n"
	require.NoError(t, wrapped.Save(ctx, domain.ConfigKey, domain.NewConfiguration(source)))

	// The backend must never see the plaintext.
	stored, err := backend.Load(ctx, domain.ConfigKey)
	require.NoError(t, err)
	assert.NotContains(t, stored.Raw, "zones")

	loaded, err := wrapped.Load(ctx, domain.ConfigKey)
	require.NoError(t, err)
	assert.Equal(t, source, loaded.Raw)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	oldKey := newKey(t)
	backend := memory.New()
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: oldKey,
	})(backend)
	require.NoError(t, oldStore.Save(ctx, domain.ConfigKey, domain.NewConfiguration("points: {}\n")))

	// Data written under the old key stays readable after rotation.
	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey(t),
		FallbackKeys: [][]byte{oldKey},
	})(backend)

	loaded, err := rotated.Load(ctx, domain.ConfigKey)
	require.NoError(t, err)
	assert.Equal(t, "points: {}\n", loaded.Raw)
}

func TestEncryptionMiddleware_WrongKeyFails(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()

	require.NoError(t, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: newKey(t),
	})(backend).Save(ctx, domain.ConfigKey, domain.NewConfiguration("points: {}\n")))

	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: newKey(t),
	})(backend).Load(ctx, domain.ConfigKey)
	assert.ErrorContains(t, err, "decrypt")
}

func TestEncryptionMiddleware_RejectsPlainValue(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()
	require.NoError(t, backend.Save(ctx, domain.ConfigKey, domain.NewConfiguration("points: {}\n")))

	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: newKey(t),
	})(backend).Load(ctx, domain.ConfigKey)
	assert.ErrorContains(t, err, "envelope")
}

func TestNewEncryptionMiddleware_PanicsOnShortKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}
