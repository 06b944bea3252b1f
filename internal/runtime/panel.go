package runtime

import (
	"sync"

	"github.com/aretw0/ergoweb/pkg/domain"
)

// PanelController is the two-state machine deciding which pane is visible
// while the viewport is constrained. While unconstrained the mode is
// preserved but not consulted: both panes render.
//
// The controller has no terminal state; it lives for the session and
// survives viewport reclassification, resuming whichever mode was last
// selected.
type PanelController struct {
	mu       sync.Mutex
	mode     domain.PanelMode
	viewport domain.ViewportClass
	onChange func(domain.PanelMode)
}

// PanelOption configures a PanelController.
type PanelOption func(*PanelController)

// WithModeChangeHook registers a callback invoked after each effective mode
// transition. Re-selecting the active mode does not fire it.
func WithModeChangeHook(fn func(domain.PanelMode)) PanelOption {
	return func(p *PanelController) {
		p.onChange = fn
	}
}

// NewPanelController creates a controller in the initial state:
// ShowingConfig, unconstrained viewport.
func NewPanelController(opts ...PanelOption) *PanelController {
	p := &PanelController{
		mode:     domain.PanelConfig,
		viewport: domain.ViewportUnconstrained,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Select activates the given pane. Selecting the currently-active mode is a
// no-op; there is never a transient state where both or neither pane is
// visible.
func (p *PanelController) Select(mode domain.PanelMode) {
	p.mu.Lock()
	if p.mode == mode {
		p.mu.Unlock()
		return
	}
	p.mode = mode
	fn := p.onChange
	p.mu.Unlock()

	if fn != nil {
		fn(mode)
	}
}

// Mode returns the last selected panel mode.
func (p *PanelController) Mode() domain.PanelMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// SetViewport records the classifier's verdict. Reclassification never
// resets the mode.
func (p *PanelController) SetViewport(class domain.ViewportClass) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewport = class
}

// Viewport returns the current viewport class.
func (p *PanelController) Viewport() domain.ViewportClass {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewport
}

// Visible reports pane visibility. Under an unconstrained viewport both
// panes are visible regardless of mode history; under a constrained one
// exactly the selected pane is.
func (p *PanelController) Visible() (config bool, outputs bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.viewport == domain.ViewportUnconstrained {
		return true, true
	}
	return p.mode == domain.PanelConfig, p.mode == domain.PanelOutputs
}
