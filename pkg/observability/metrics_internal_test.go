package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/ergoweb/pkg/domain"
)

// An editing burst starts many runs but completes only the last; every
// superseded start entry must be reclaimed or a long-lived server leaks
// one per edit.
func TestHooks_CompletionReclaimsSupersededStarts(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks()

	ctx := context.Background()
	now := time.Now()
	for seq := uint64(1); seq <= 100; seq++ {
		hooks.OnGenerationStarted(ctx, &domain.Event{Seq: seq, Timestamp: now})
	}
	hooks.OnGenerationCompleted(ctx, &domain.Event{Seq: 100, Timestamp: now.Add(40 * time.Millisecond)})

	m.mu.Lock()
	remaining := len(m.starts)
	m.mu.Unlock()
	assert.Zero(t, remaining)
}

func TestHooks_DiscardedRunReleasesStartEntry(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks()

	ctx := context.Background()
	now := time.Now()
	hooks.OnGenerationStarted(ctx, &domain.Event{Seq: 1, Timestamp: now})
	hooks.OnGenerationStarted(ctx, &domain.Event{Seq: 2, Timestamp: now})
	hooks.OnGenerationDiscarded(ctx, &domain.Event{Seq: 1, Timestamp: now})

	m.mu.Lock()
	_, stale := m.starts[1]
	_, live := m.starts[2]
	m.mu.Unlock()
	assert.False(t, stale)
	assert.True(t, live)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("discarded")))
}
