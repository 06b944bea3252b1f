package memory_test

import (
	"testing"

	"github.com/aretw0/ergoweb/internal/adapters/memory"
	"github.com/aretw0/ergoweb/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.New()
	ports.RunConfigStoreContract(t, store)
}
