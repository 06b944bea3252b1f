package domain

import "fmt"

// PanelMode identifies which of the two mutually-exclusive panes is shown
// while the viewport is constrained. It is a tagged enumeration rather than
// a pair of booleans: an invalid "both hidden" or "both visible" combination
// is unrepresentable.
type PanelMode string

const (
	// PanelConfig shows the configuration editor pane.
	PanelConfig PanelMode = "config"

	// PanelOutputs shows the generated-output preview pane.
	PanelOutputs PanelMode = "outputs"
)

// ParsePanelMode converts boundary input into a PanelMode.
func ParsePanelMode(s string) (PanelMode, error) {
	switch PanelMode(s) {
	case PanelConfig:
		return PanelConfig, nil
	case PanelOutputs:
		return PanelOutputs, nil
	default:
		return "", fmt.Errorf("unknown panel mode: %q", s)
	}
}

// ViewportClass is the classifier's verdict on the rendering surface.
type ViewportClass string

const (
	// ViewportUnconstrained means both panes fit side-by-side.
	// This is the default before the first measurement arrives.
	ViewportUnconstrained ViewportClass = "unconstrained"

	// ViewportConstrained means only one pane fits; PanelMode decides which.
	ViewportConstrained ViewportClass = "constrained"
)
