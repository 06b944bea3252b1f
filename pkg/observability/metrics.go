package observability

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/ergoweb/pkg/domain"
)

// Metrics holds the Prometheus collectors for the studio.
type Metrics struct {
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	DownloadsTotal     prometheus.Counter
	PanelSelections    *prometheus.CounterVec

	mu     sync.Mutex
	starts map[uint64]time.Time
}

// NewMetrics creates and registers the metric set on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ergoweb_generations_total",
				Help: "Generation runs by outcome.",
			},
			[]string{"status"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ergoweb_generation_duration_seconds",
				Help:    "Wall time of accepted generation runs.",
				Buckets: prometheus.DefBuckets,
			},
		),
		DownloadsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ergoweb_downloads_total",
				Help: "Archive downloads served.",
			},
		),
		PanelSelections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ergoweb_panel_selections_total",
				Help: "Panel mode activations by target pane.",
			},
			[]string{"mode"},
		),
		starts: make(map[uint64]time.Time),
	}

	reg.MustRegister(m.GenerationsTotal, m.GenerationDuration, m.DownloadsTotal, m.PanelSelections)
	return m
}

// Hooks adapts the metric set to workspace lifecycle hooks.
// Started and completed hooks fire on different goroutines, hence the lock
// around the start-time map.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGenerationStarted: func(ctx context.Context, ev *domain.Event) {
			m.mu.Lock()
			m.starts[ev.Seq] = ev.Timestamp
			m.mu.Unlock()
		},
		OnGenerationCompleted: func(ctx context.Context, ev *domain.Event) {
			m.GenerationsTotal.WithLabelValues("success").Inc()
			m.mu.Lock()
			if start, ok := m.starts[ev.Seq]; ok {
				m.GenerationDuration.Observe(ev.Timestamp.Sub(start).Seconds())
			}
			m.reclaim(ev.Seq)
			m.mu.Unlock()
		},
		OnGenerationFailed: func(ctx context.Context, ev *domain.Event) {
			m.GenerationsTotal.WithLabelValues("error").Inc()
			m.mu.Lock()
			m.reclaim(ev.Seq)
			m.mu.Unlock()
		},
		OnGenerationDiscarded: func(ctx context.Context, ev *domain.Event) {
			m.GenerationsTotal.WithLabelValues("discarded").Inc()
			m.mu.Lock()
			delete(m.starts, ev.Seq)
			m.mu.Unlock()
		},
		OnDownload: func(ctx context.Context, _ *domain.Archive) {
			m.DownloadsTotal.Inc()
		},
	}
}

// reclaim drops the start entry for seq and every older one. A finished
// run supersedes all earlier sequences, so their entries can never be
// matched again; without this sweep a long-lived server would accumulate
// one entry per superseded edit. Callers hold m.mu.
func (m *Metrics) reclaim(seq uint64) {
	for s := range m.starts {
		if s <= seq {
			delete(m.starts, s)
		}
	}
}

// ObservePanelSelection records a panel activation.
func (m *Metrics) ObservePanelSelection(mode domain.PanelMode) {
	m.PanelSelections.WithLabelValues(string(mode)).Inc()
}
