package runtime_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ergoweb/internal/adapters/memory"
	"github.com/aretw0/ergoweb/internal/runtime"
	"github.com/aretw0/ergoweb/pkg/domain"
	"github.com/aretw0/ergoweb/pkg/ports"
)

const validConfig = `{"points": {"zones": {"matrix": {}}}}`

// instantGenerator answers every run immediately with one artifact echoing
// the configuration, so tests can tell which submission won.
func instantGenerator() ports.Generator {
	return ports.GeneratorFunc(func(ctx context.Context, cfg domain.Configuration) ([]domain.Artifact, error) {
		return []domain.Artifact{
			{Name: "points.yaml", MIMEType: "text/yaml", Content: []byte(cfg.Raw)},
		}, nil
	})
}

// generatorCall is one pending run of the stepGenerator, answered by the
// test via respond. It deliberately ignores context cancellation so the
// sequence check, not cancellation, is what the race tests exercise.
type generatorCall struct {
	cfg     domain.Configuration
	respond chan generatorResult
}

type generatorResult struct {
	artifacts []domain.Artifact
	err       error
}

type stepGenerator struct {
	calls chan generatorCall
}

func newStepGenerator() *stepGenerator {
	return &stepGenerator{calls: make(chan generatorCall, 8)}
}

func (g *stepGenerator) Generate(ctx context.Context, cfg domain.Configuration) ([]domain.Artifact, error) {
	c := generatorCall{cfg: cfg, respond: make(chan generatorResult)}
	g.calls <- c
	r := <-c.respond
	return r.artifacts, r.err
}

func (g *stepGenerator) next(t *testing.T) generatorCall {
	t.Helper()
	select {
	case c := <-g.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a generation run to start")
		return generatorCall{}
	}
}

func artifactsFor(cfg domain.Configuration) []domain.Artifact {
	return []domain.Artifact{{Name: "points.yaml", MIMEType: "text/yaml", Content: []byte(cfg.Raw)}}
}

func TestWorkspace_BootstrapPreSeeded(t *testing.T) {
	ctx := context.Background()

	// Pre-seed the store before startup; no user interaction follows.
	store := memory.New()
	require.NoError(t, store.Save(ctx, domain.ConfigKey, domain.NewConfiguration(validConfig)))

	w := runtime.NewWorkspace(store, instantGenerator())
	require.NoError(t, w.Bootstrap(ctx))

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	set, err := w.WaitForArtifacts(waitCtx)
	require.NoError(t, err, "a pre-seeded store must yield artifacts within a bounded wait")
	assert.False(t, set.Empty())
	assert.Equal(t, validConfig, w.Config().Raw)
}

func TestWorkspace_BootstrapEmptyStore(t *testing.T) {
	ctx := context.Background()
	w := runtime.NewWorkspace(memory.New(), instantGenerator())

	require.NoError(t, w.Bootstrap(ctx))

	_, ok := w.CurrentArtifacts()
	assert.False(t, ok, "no artifact set until the user supplies a configuration")
	assert.True(t, w.Config().Empty())
}

func TestWorkspace_BootstrapMalformedConfig(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Save(ctx, domain.ConfigKey, domain.NewConfiguration("{broken")))

	w := runtime.NewWorkspace(store, instantGenerator())

	// Malformed persisted state degrades to empty, never crashes startup.
	require.NoError(t, w.Bootstrap(ctx))
	assert.True(t, w.Config().Empty())
	_, ok := w.CurrentArtifacts()
	assert.False(t, ok)
}

func TestWorkspace_SetConfigPersistsAndGenerates(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w := runtime.NewWorkspace(store, instantGenerator())

	require.NoError(t, w.SetConfig(ctx, validConfig))

	persisted, err := store.Load(ctx, domain.ConfigKey)
	require.NoError(t, err)
	assert.Equal(t, validConfig, persisted.Raw)

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	set, err := w.WaitForArtifacts(waitCtx)
	require.NoError(t, err)
	assert.Equal(t, validConfig, string(set.Artifacts[0].Content))
}

func TestWorkspace_SetConfigRejectsMalformed(t *testing.T) {
	w := runtime.NewWorkspace(memory.New(), instantGenerator())

	err := w.SetConfig(context.Background(), "{nope")
	var parseErr *domain.ConfigParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestWorkspace_GenerateWithoutConfig(t *testing.T) {
	w := runtime.NewWorkspace(memory.New(), instantGenerator())

	_, err := w.Generate(context.Background())
	assert.ErrorIs(t, err, runtime.ErrEmptyConfiguration)
}

func TestWorkspace_StaleCompletionDiscarded(t *testing.T) {
	// Two runs in quick succession; the first finishes after the second.
	ctx := context.Background()
	gen := newStepGenerator()
	w := runtime.NewWorkspace(memory.New(), gen)

	require.NoError(t, w.SetConfig(ctx, `{"rev": 1}`))
	first := gen.next(t)

	require.NoError(t, w.SetConfig(ctx, `{"rev": 2}`))
	second := gen.next(t)

	// The newer submission completes first.
	second.respond <- generatorResult{artifacts: artifactsFor(second.cfg)}

	require.Eventually(t, func() bool {
		set, ok := w.CurrentArtifacts()
		return ok && set.Seq == 2
	}, 2*time.Second, 10*time.Millisecond)

	// The older run straggles in afterwards and must lose.
	first.respond <- generatorResult{artifacts: artifactsFor(first.cfg)}

	assert.Never(t, func() bool {
		set, ok := w.CurrentArtifacts()
		return ok && string(set.Artifacts[0].Content) == `{"rev": 1}`
	}, 300*time.Millisecond, 25*time.Millisecond,
		"the displayed set must match the most recently submitted configuration")

	set, ok := w.CurrentArtifacts()
	require.True(t, ok)
	assert.Equal(t, uint64(2), set.Seq)
}

func TestWorkspace_DiscardedRunFiresHook(t *testing.T) {
	// Superseded runs must announce their discard so observers (metrics)
	// can release per-run state.
	ctx := context.Background()
	gen := newStepGenerator()
	discarded := make(chan uint64, 4)
	w := runtime.NewWorkspace(memory.New(), gen, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnGenerationDiscarded: func(_ context.Context, ev *domain.Event) {
			discarded <- ev.Seq
		},
	}))

	require.NoError(t, w.SetConfig(ctx, `{"rev": 1}`))
	first := gen.next(t)

	require.NoError(t, w.SetConfig(ctx, `{"rev": 2}`))
	second := gen.next(t)

	second.respond <- generatorResult{artifacts: artifactsFor(second.cfg)}
	first.respond <- generatorResult{artifacts: artifactsFor(first.cfg)}

	select {
	case seq := <-discarded:
		assert.Equal(t, uint64(1), seq)
	case <-time.After(2 * time.Second):
		t.Fatal("discard hook never fired for the superseded run")
	}
}

func TestWorkspace_DebounceCoalescesBursts(t *testing.T) {
	// A typing burst submits several revisions in quick succession; with a
	// debounce only the final one should ever reach the generator.
	ctx := context.Background()
	var runs atomic.Int64
	gen := ports.GeneratorFunc(func(ctx context.Context, cfg domain.Configuration) ([]domain.Artifact, error) {
		runs.Add(1)
		return artifactsFor(cfg), nil
	})
	w := runtime.NewWorkspace(memory.New(), gen, runtime.WithDebounce(60*time.Millisecond))

	require.NoError(t, w.SetConfig(ctx, `{"rev": 1}`))
	require.NoError(t, w.SetConfig(ctx, `{"rev": 2}`))
	require.NoError(t, w.SetConfig(ctx, `{"rev": 3}`))

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	set, err := w.WaitForArtifacts(waitCtx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), set.Seq)
	assert.Equal(t, `{"rev": 3}`, string(set.Artifacts[0].Content))
	assert.Equal(t, int64(1), runs.Load())
}

func TestWorkspace_GenerationErrorKeepsPriorSet(t *testing.T) {
	ctx := context.Background()
	gen := newStepGenerator()
	w := runtime.NewWorkspace(memory.New(), gen)

	require.NoError(t, w.SetConfig(ctx, `{"rev": 1}`))
	call := gen.next(t)
	call.respond <- generatorResult{artifacts: artifactsFor(call.cfg)}

	require.Eventually(t, func() bool {
		_, ok := w.CurrentArtifacts()
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.SetConfig(ctx, `{"rev": 2}`))
	call = gen.next(t)
	call.respond <- generatorResult{err: errors.New("points.zones is required")}

	// The failure is surfaced as an event, and the prior set stays current.
	assert.Never(t, func() bool {
		set, ok := w.CurrentArtifacts()
		return !ok || set.Seq != 1
	}, 300*time.Millisecond, 25*time.Millisecond)
}

func TestWorkspace_EventsObserveLifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen := newStepGenerator()
	w := runtime.NewWorkspace(memory.New(), gen)
	events := w.Subscribe(ctx)

	require.NoError(t, w.SetConfig(ctx, validConfig))
	call := gen.next(t)
	call.respond <- generatorResult{artifacts: artifactsFor(call.cfg)}

	var seen []domain.EventType
	deadline := time.After(2 * time.Second)
	for len(seen) < 3 {
		select {
		case ev := <-events:
			seen = append(seen, ev.Type)
		case <-deadline:
			t.Fatalf("timed out, saw %v", seen)
		}
	}

	assert.Equal(t, []domain.EventType{
		domain.EventConfigUpdated,
		domain.EventGenerationStarted,
		domain.EventGenerationCompleted,
	}, seen)
}
