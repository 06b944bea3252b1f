package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ergoweb/internal/adapters/file"
	"github.com/aretw0/ergoweb/pkg/domain"
	"github.com/aretw0/ergoweb/pkg/ports"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunConfigStoreContract(t, store)
}

func TestFileStore_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "current", domain.NewConfiguration(`{"points": {}}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the destination file should remain")
	assert.Equal(t, "current.json", entries[0].Name())
}

func TestFileStore_DefaultPath(t *testing.T) {
	store := file.New("")
	assert.Equal(t, filepath.Join(".ergoweb", "configs"), store.BasePath)
}
