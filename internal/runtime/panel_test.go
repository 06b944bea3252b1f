package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ergoweb/internal/runtime"
	"github.com/aretw0/ergoweb/pkg/domain"
)

func TestPanel_InitialState(t *testing.T) {
	p := runtime.NewPanelController()

	assert.Equal(t, domain.PanelConfig, p.Mode())
	assert.Equal(t, domain.ViewportUnconstrained, p.Viewport())
}

func TestPanel_ConstrainedToggle(t *testing.T) {
	// Scenario: mobile-sized viewport, fresh session.
	p := runtime.NewPanelController()
	p.SetViewport(domain.ViewportConstrained)

	config, outputs := p.Visible()
	assert.True(t, config, "config pane visible on fresh constrained session")
	assert.False(t, outputs)

	p.Select(domain.PanelOutputs)
	config, outputs = p.Visible()
	assert.False(t, config, "toggling strictly hides the other pane")
	assert.True(t, outputs)

	p.Select(domain.PanelConfig)
	config, outputs = p.Visible()
	assert.True(t, config)
	assert.False(t, outputs)
}

func TestPanel_ExactlyOneVisibleWhileConstrained(t *testing.T) {
	p := runtime.NewPanelController()
	p.SetViewport(domain.ViewportConstrained)

	// Any sequence of activations keeps the exclusivity invariant.
	sequence := []domain.PanelMode{
		domain.PanelOutputs, domain.PanelOutputs, domain.PanelConfig,
		domain.PanelOutputs, domain.PanelConfig, domain.PanelConfig,
		domain.PanelOutputs,
	}
	for i, mode := range sequence {
		p.Select(mode)
		config, outputs := p.Visible()
		require.NotEqual(t, config, outputs, "step %d: exactly one pane must be visible", i)
		assert.Equal(t, mode, p.Mode(), "step %d: visibility matches the most recent selection", i)
	}
}

func TestPanel_RepeatSelectionIsNoOp(t *testing.T) {
	var transitions []domain.PanelMode
	p := runtime.NewPanelController(runtime.WithModeChangeHook(func(m domain.PanelMode) {
		transitions = append(transitions, m)
	}))
	p.SetViewport(domain.ViewportConstrained)

	p.Select(domain.PanelOutputs)
	p.Select(domain.PanelOutputs)

	assert.Equal(t, domain.PanelOutputs, p.Mode())
	assert.Equal(t, []domain.PanelMode{domain.PanelOutputs}, transitions,
		"re-selecting the active mode must not fire a transition")
}

func TestPanel_UnconstrainedShowsBoth(t *testing.T) {
	p := runtime.NewPanelController()
	p.SetViewport(domain.ViewportConstrained)
	p.Select(domain.PanelOutputs)

	// Widen the surface: mode history is irrelevant, both panes render.
	p.SetViewport(domain.ViewportUnconstrained)
	config, outputs := p.Visible()
	assert.True(t, config)
	assert.True(t, outputs)
}

func TestPanel_ModeSurvivesReclassification(t *testing.T) {
	p := runtime.NewPanelController()
	p.SetViewport(domain.ViewportConstrained)
	p.Select(domain.PanelOutputs)

	p.SetViewport(domain.ViewportUnconstrained)
	p.SetViewport(domain.ViewportConstrained)

	config, outputs := p.Visible()
	assert.False(t, config)
	assert.True(t, outputs, "constraining again resumes the last selected mode")
}
