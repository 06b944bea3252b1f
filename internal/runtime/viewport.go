package runtime

import (
	"sync"

	"github.com/aretw0/ergoweb/pkg/domain"
)

// DefaultBreakpoint is the width (CSS pixels) below which the viewport
// cannot comfortably show both panes side-by-side.
const DefaultBreakpoint = 768

// Classifier turns viewport measurements into a ViewportClass. It is
// event-driven: each measurement re-evaluates immediately, there is no
// polling. Before the first measurement it reports unconstrained.
type Classifier struct {
	mu         sync.Mutex
	breakpoint int
	class      domain.ViewportClass
	measured   bool
	onChange   func(domain.ViewportClass)
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithBreakpoint overrides the constrained-width threshold.
func WithBreakpoint(px int) ClassifierOption {
	return func(c *Classifier) {
		if px > 0 {
			c.breakpoint = px
		}
	}
}

// WithClassChangeHook registers a callback fired on each classification
// change. This is how the panel controller learns about reclassification.
func WithClassChangeHook(fn func(domain.ViewportClass)) ClassifierOption {
	return func(c *Classifier) {
		c.onChange = fn
	}
}

// NewClassifier creates a classifier defaulting to unconstrained.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		breakpoint: DefaultBreakpoint,
		class:      domain.ViewportUnconstrained,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Measure classifies the given surface dimensions and returns the verdict.
// Height is accepted for completeness; only width decides whether the two
// panes fit side-by-side.
func (c *Classifier) Measure(width, height int) domain.ViewportClass {
	class := domain.ViewportUnconstrained
	if width < c.breakpoint {
		class = domain.ViewportConstrained
	}

	c.mu.Lock()
	changed := !c.measured || class != c.class
	c.class = class
	c.measured = true
	fn := c.onChange
	c.mu.Unlock()

	if changed && fn != nil {
		fn(class)
	}
	return class
}

// Class returns the most recent classification.
func (c *Classifier) Class() domain.ViewportClass {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.class
}
