package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ergoweb/pkg/domain"
)

// RunConfigStoreContract runs a suite of tests to verify that a ConfigStore
// implementation adheres to the defined interface contract.
func RunConfigStoreContract(t *testing.T, store ConfigStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		cfg := domain.NewConfiguration(`{"points": {"zones": {"matrix": {}}}}`)

		err := store.Save(ctx, key, cfg)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, cfg.Raw, loaded.Raw, "configuration must round-trip verbatim")
	})

	t.Run("Overwrite", func(t *testing.T) {
		first := domain.NewConfiguration(`{"rev": 1}`)
		second := domain.NewConfiguration(`{"rev": 2}`)

		require.NoError(t, store.Save(ctx, key, first))
		require.NoError(t, store.Save(ctx, key, second))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, second.Raw, loaded.Raw, "every edit overwrites the previous value")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, domain.NewConfiguration("{}")))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrConfigNotFound, "Load after Delete should return ErrConfigNotFound")
	})

	t.Run("Delete Non-Existent", func(t *testing.T) {
		err := store.Delete(ctx, "non-existent-"+key)
		assert.NoError(t, err, "deleting a missing key is not an error")
	})
}
