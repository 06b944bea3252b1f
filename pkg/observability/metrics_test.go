package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/ergoweb/pkg/domain"
	"github.com/aretw0/ergoweb/pkg/observability"
)

func TestMetrics_GenerationOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()

	ctx := context.Background()
	now := time.Now()

	hooks.OnGenerationStarted(ctx, &domain.Event{Seq: 1, Timestamp: now})
	hooks.OnGenerationCompleted(ctx, &domain.Event{Seq: 1, Timestamp: now.Add(40 * time.Millisecond)})
	hooks.OnGenerationStarted(ctx, &domain.Event{Seq: 2, Timestamp: now})
	hooks.OnGenerationFailed(ctx, &domain.Event{Seq: 2, Timestamp: now})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("error")))
}

func TestMetrics_DownloadsAndPanels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.Hooks().OnDownload(context.Background(), &domain.Archive{Filename: "ergogen-2024-03-07.zip"})
	m.ObservePanelSelection(domain.PanelOutputs)
	m.ObservePanelSelection(domain.PanelOutputs)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DownloadsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PanelSelections.WithLabelValues("outputs")))
}
