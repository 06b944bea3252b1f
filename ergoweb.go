package ergoweb

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/ergoweb/internal/adapters/memory"
	"github.com/aretw0/ergoweb/internal/adapters/process"
	"github.com/aretw0/ergoweb/internal/archive"
	"github.com/aretw0/ergoweb/internal/runtime"
	"github.com/aretw0/ergoweb/pkg/domain"
	"github.com/aretw0/ergoweb/pkg/ports"
)

// Version is the library version. Overridden at build time via ldflags.
var Version = "0.1.0"

// Studio is the high-level entry point for the ErgoWeb library.
// It wires the configuration workspace, the panel visibility machine, and
// the archive packager into one session and provides a simplified API for
// consumers.
type Studio struct {
	workspace  *runtime.Workspace
	panel      *runtime.PanelController
	classifier *runtime.Classifier
	packager   *archive.Packager

	store      ports.ConfigStore
	generator  ports.Generator
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	breakpoint int
	clock      func() time.Time
	debounce   time.Duration
}

// Option defines a functional option for configuring the Studio.
type Option func(*Studio)

// WithStore injects a configuration store, bypassing the default in-memory
// backend.
func WithStore(store ports.ConfigStore) Option {
	return func(s *Studio) {
		s.store = store
	}
}

// WithGenerator injects the generation service. The default invokes the
// ergogen CLI found on PATH.
func WithGenerator(gen ports.Generator) Option {
	return func(s *Studio) {
		s.generator = gen
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Studio) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Studio) {
		s.logger = logger
	}
}

// WithBreakpoint overrides the constrained-viewport width threshold.
func WithBreakpoint(px int) Option {
	return func(s *Studio) {
		s.breakpoint = px
	}
}

// WithDebounce delays each generation run so rapid successive edits coalesce
// into a single generator invocation. Zero disables the delay.
func WithDebounce(d time.Duration) Option {
	return func(s *Studio) {
		s.debounce = d
	}
}

// WithClock injects a clock, used for artifact timestamps and the archive
// filename date.
func WithClock(clock func() time.Time) Option {
	return func(s *Studio) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New initializes a new Studio session.
func New(opts ...Option) *Studio {
	s := &Studio{
		breakpoint: runtime.DefaultBreakpoint,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = memory.New()
	}
	if s.generator == nil {
		s.generator = process.New("ergogen")
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s.panel = runtime.NewPanelController()
	s.classifier = runtime.NewClassifier(
		runtime.WithBreakpoint(s.breakpoint),
		runtime.WithClassChangeHook(s.panel.SetViewport),
	)
	s.workspace = runtime.NewWorkspace(s.store, s.generator,
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(s.hooks),
		runtime.WithClock(s.clock),
		runtime.WithDebounce(s.debounce),
	)
	s.packager = archive.New(archive.WithClock(s.clock))

	return s
}

// Bootstrap restores the persisted configuration, if any, and submits a
// generation run for it. A pre-seeded store yields an artifact set without
// further user action; a missing or malformed value starts the session
// empty.
func (s *Studio) Bootstrap(ctx context.Context) error {
	return s.workspace.Bootstrap(ctx)
}

// Config returns the current configuration.
func (s *Studio) Config() domain.Configuration {
	return s.workspace.Config()
}

// SetConfig validates, persists, and generates for the given source.
func (s *Studio) SetConfig(ctx context.Context, raw string) error {
	return s.workspace.SetConfig(ctx, raw)
}

// Generate submits a generation run for the current configuration and
// returns its sequence number. An in-flight run is superseded.
func (s *Studio) Generate(ctx context.Context) (uint64, error) {
	return s.workspace.Generate(ctx)
}

// CurrentArtifacts returns the current artifact set, if any generation has
// completed.
func (s *Studio) CurrentArtifacts() (*domain.ArtifactSet, bool) {
	return s.workspace.CurrentArtifacts()
}

// WaitForArtifacts blocks until a current artifact set exists or ctx
// expires.
func (s *Studio) WaitForArtifacts(ctx context.Context) (*domain.ArtifactSet, error) {
	return s.workspace.WaitForArtifacts(ctx)
}

// Subscribe returns a channel of pipeline events, removed when ctx ends.
func (s *Studio) Subscribe(ctx context.Context) <-chan domain.Event {
	return s.workspace.Subscribe(ctx)
}

// DownloadArchive bundles the current artifact set into a dated zip
// archive and fires the download hook.
func (s *Studio) DownloadArchive(ctx context.Context) (domain.Archive, error) {
	set, ok := s.workspace.CurrentArtifacts()
	if !ok {
		return domain.Archive{}, &domain.PackagingError{Stage: "gather", Err: domain.ErrNoArtifacts}
	}

	bundle, err := s.packager.Package(set)
	if err != nil {
		return domain.Archive{}, err
	}

	if s.hooks.OnDownload != nil {
		s.hooks.OnDownload(ctx, &bundle)
	}
	return bundle, nil
}

// Panel returns the panel visibility machine for this session.
func (s *Studio) Panel() *runtime.PanelController {
	return s.panel
}

// Classifier returns the viewport classifier for this session.
func (s *Studio) Classifier() *runtime.Classifier {
	return s.classifier
}

// Packager returns the archive packager for this session.
func (s *Studio) Packager() *archive.Packager {
	return s.packager
}
