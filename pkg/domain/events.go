package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventGenerationStarted   EventType = "generation_started"
	EventGenerationCompleted EventType = "generation_completed"
	EventGenerationDiscarded EventType = "generation_discarded"
	EventGenerationFailed    EventType = "generation_failed"
	EventConfigUpdated       EventType = "config_updated"
)

// Event is a discrete pipeline notification, consumed by SSE subscribers
// and observability hooks.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`

	// Seq identifies the generation run the event belongs to (zero for
	// config updates).
	Seq uint64 `json:"seq,omitempty"`

	// Artifacts lists artifact names on completion events.
	Artifacts []string `json:"artifacts,omitempty"`

	// Error carries the failure message on failed events. Failures are
	// user-visible but never fatal.
	Error string `json:"error,omitempty"`
}

// LifecycleHooks defines callbacks for workspace observability.
// All hooks are optional and invoked synchronously on the event's goroutine.
type LifecycleHooks struct {
	OnGenerationStarted   func(context.Context, *Event)
	OnGenerationCompleted func(context.Context, *Event)
	OnGenerationFailed    func(context.Context, *Event)
	OnGenerationDiscarded func(context.Context, *Event)
	OnDownload            func(context.Context, *Archive)
}
