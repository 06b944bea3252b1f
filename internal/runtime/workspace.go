package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/ergoweb/pkg/domain"
	"github.com/aretw0/ergoweb/pkg/ports"
)

// ErrEmptyConfiguration is returned when generation is requested before any
// configuration has been supplied.
var ErrEmptyConfiguration = errors.New("no configuration to generate from")

// Workspace is the pipeline engine binding the configuration store, the
// generation service, and the current artifact set.
//
// Generation runs are asynchronous so the UI stays responsive while a run
// is in flight. Every submission is tagged with a monotonically increasing
// sequence number; a completion is accepted only while its sequence is
// still the highest issued, so the current set always corresponds to the
// most recently submitted configuration, never to an earlier run that
// happened to finish later. Superseded runs are additionally cancelled via
// their context.
type Workspace struct {
	store    ports.ConfigStore
	gen      ports.Generator
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	clock    func() time.Time
	debounce time.Duration

	mu       sync.Mutex
	cfg      domain.Configuration
	current  *domain.ArtifactSet
	lastSeq  uint64
	inflight context.CancelFunc

	subMu sync.Mutex
	subs  map[chan domain.Event]struct{}
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*Workspace)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) WorkspaceOption {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) WorkspaceOption {
	return func(w *Workspace) {
		w.hooks = hooks
	}
}

// WithDebounce delays each generation run by d, so a burst of rapid edits
// collapses into a single invocation of the generator: every superseded run
// is cancelled during its delay and never reaches the generator at all.
// Zero disables the delay.
func WithDebounce(d time.Duration) WorkspaceOption {
	return func(w *Workspace) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithClock injects a clock, used to timestamp artifact sets and events.
func WithClock(clock func() time.Time) WorkspaceOption {
	return func(w *Workspace) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// NewWorkspace creates a workspace with an empty configuration and no
// current artifact set.
func NewWorkspace(store ports.ConfigStore, gen ports.Generator, opts ...WorkspaceOption) *Workspace {
	w := &Workspace{
		store:  store,
		gen:    gen,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  time.Now,
		subs:   make(map[chan domain.Event]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Bootstrap reads the persisted store under the well-known key. A present,
// valid configuration is adopted and immediately submitted for generation,
// so a pre-seeded store deterministically yields an artifact set without
// user action. A missing value starts the session empty; a malformed one
// degrades to empty instead of crashing startup.
func (w *Workspace) Bootstrap(ctx context.Context) error {
	cfg, err := w.store.Load(ctx, domain.ConfigKey)
	if errors.Is(err, domain.ErrConfigNotFound) {
		w.logger.Info("no persisted configuration, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read persisted configuration: %w", err)
	}

	parsed, err := domain.ParseConfiguration(cfg.Raw)
	if err != nil {
		// Previous good state is "no state"; keep the session usable.
		w.logger.Warn("persisted configuration is malformed, starting empty", "error", err)
		return nil
	}

	w.mu.Lock()
	w.cfg = parsed
	w.mu.Unlock()

	if _, err := w.Generate(ctx); err != nil {
		return err
	}
	return nil
}

// Config returns the current configuration.
func (w *Workspace) Config() domain.Configuration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// SetConfig validates raw source, persists it under the well-known key, and
// submits a generation run for it.
func (w *Workspace) SetConfig(ctx context.Context, raw string) error {
	cfg, err := domain.ParseConfiguration(raw)
	if err != nil {
		return err
	}

	if err := w.store.Save(ctx, domain.ConfigKey, cfg); err != nil {
		return fmt.Errorf("failed to persist configuration: %w", err)
	}

	w.mu.Lock()
	w.cfg = cfg
	w.mu.Unlock()

	w.publish(domain.Event{Timestamp: w.clock(), Type: domain.EventConfigUpdated})

	_, err = w.Generate(ctx)
	return err
}

// Generate submits an asynchronous generation run for the current
// configuration and returns its sequence number. Any in-flight run is
// superseded: its context is cancelled and its eventual result discarded.
func (w *Workspace) Generate(ctx context.Context) (uint64, error) {
	w.mu.Lock()
	if w.cfg.Empty() {
		w.mu.Unlock()
		return 0, ErrEmptyConfiguration
	}

	w.lastSeq++
	seq := w.lastSeq
	cfg := w.cfg

	if w.inflight != nil {
		w.inflight()
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.inflight = cancel
	w.mu.Unlock()

	started := domain.Event{Timestamp: w.clock(), Type: domain.EventGenerationStarted, Seq: seq}
	w.publish(started)
	if w.hooks.OnGenerationStarted != nil {
		w.hooks.OnGenerationStarted(ctx, &started)
	}

	go func() {
		defer cancel()
		if w.debounce > 0 {
			timer := time.NewTimer(w.debounce)
			select {
			case <-runCtx.Done():
				timer.Stop()
				w.complete(runCtx, seq, nil, runCtx.Err())
				return
			case <-timer.C:
			}
		}
		artifacts, err := w.gen.Generate(runCtx, cfg)
		w.complete(runCtx, seq, artifacts, err)
	}()

	return seq, nil
}

// complete applies a finished run. The sequence check is the ordering
// guarantee: stale completions never swap the set.
func (w *Workspace) complete(ctx context.Context, seq uint64, artifacts []domain.Artifact, genErr error) {
	w.mu.Lock()
	if seq != w.lastSeq {
		w.mu.Unlock()
		w.logger.Debug("discarding superseded generation run", "seq", seq)
		discarded := domain.Event{Timestamp: w.clock(), Type: domain.EventGenerationDiscarded, Seq: seq}
		w.publish(discarded)
		if w.hooks.OnGenerationDiscarded != nil {
			w.hooks.OnGenerationDiscarded(ctx, &discarded)
		}
		return
	}

	if genErr != nil {
		// Prior artifact set, if any, remains current.
		w.mu.Unlock()
		err := &domain.GenerationError{Seq: seq, Err: genErr}
		w.logger.Error("generation failed", "seq", seq, "error", genErr)
		failed := domain.Event{Timestamp: w.clock(), Type: domain.EventGenerationFailed, Seq: seq, Error: err.Error()}
		w.publish(failed)
		if w.hooks.OnGenerationFailed != nil {
			w.hooks.OnGenerationFailed(ctx, &failed)
		}
		return
	}

	set := &domain.ArtifactSet{
		Seq:         seq,
		GeneratedAt: w.clock(),
		Artifacts:   artifacts,
	}
	w.current = set
	w.mu.Unlock()

	w.logger.Info("generation completed", "seq", seq, "artifacts", len(artifacts))
	completed := domain.Event{
		Timestamp: w.clock(),
		Type:      domain.EventGenerationCompleted,
		Seq:       seq,
		Artifacts: set.Names(),
	}
	w.publish(completed)
	if w.hooks.OnGenerationCompleted != nil {
		w.hooks.OnGenerationCompleted(ctx, &completed)
	}
}

// CurrentArtifacts returns the current artifact set, if a generation has
// completed. Callers must treat the set as immutable.
func (w *Workspace) CurrentArtifacts() (*domain.ArtifactSet, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, w.current != nil
}

// Subscribe returns a channel of pipeline events. The subscription is
// removed when ctx is cancelled. Slow consumers drop events rather than
// block the pipeline.
func (w *Workspace) Subscribe(ctx context.Context) <-chan domain.Event {
	ch := make(chan domain.Event, 16)

	w.subMu.Lock()
	w.subs[ch] = struct{}{}
	w.subMu.Unlock()

	go func() {
		<-ctx.Done()
		w.subMu.Lock()
		delete(w.subs, ch)
		w.subMu.Unlock()
		close(ch)
	}()

	return ch
}

// WaitForArtifacts blocks until a current artifact set exists or ctx
// expires. It is the bounded-wait companion to Bootstrap.
func (w *Workspace) WaitForArtifacts(ctx context.Context) (*domain.ArtifactSet, error) {
	sub, cancel := w.subscribeInternal()
	defer cancel()

	if set, ok := w.CurrentArtifacts(); ok {
		return set, nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for artifacts: %w", ctx.Err())
		case ev := <-sub:
			if ev.Type == domain.EventGenerationCompleted {
				if set, ok := w.CurrentArtifacts(); ok {
					return set, nil
				}
			}
		}
	}
}

func (w *Workspace) subscribeInternal() (chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)
	w.subMu.Lock()
	w.subs[ch] = struct{}{}
	w.subMu.Unlock()

	return ch, func() {
		w.subMu.Lock()
		delete(w.subs, ch)
		w.subMu.Unlock()
	}
}

func (w *Workspace) publish(ev domain.Event) {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	for ch := range w.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
