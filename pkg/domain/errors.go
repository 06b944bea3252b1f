package domain

import (
	"errors"
	"fmt"
)

// ErrConfigNotFound is returned when no value exists under a store key.
var ErrConfigNotFound = errors.New("configuration not found")

// ErrNoArtifacts is returned when an operation needs a current artifact set
// but no generation has completed yet.
var ErrNoArtifacts = errors.New("no artifact set available")

// ConfigParseError indicates a malformed configuration. It is recovered
// locally: at startup the system degrades to the empty configuration
// instead of crashing.
type ConfigParseError struct {
	Reason string
	Err    error
}

func (e *ConfigParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config parse: %s: %v", e.Reason, e.Err)
	}
	return "config parse: " + e.Reason
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

// GenerationError indicates a Generation Service failure. The prior artifact
// set, if any, remains current.
type GenerationError struct {
	Seq uint64
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation run %d failed: %v", e.Seq, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PackagingError indicates an archive assembly failure. No partial or
// corrupt archive is ever offered for download; the user must re-trigger.
type PackagingError struct {
	Stage string
	Err   error
}

func (e *PackagingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("packaging failed at %s: %v", e.Stage, e.Err)
	}
	return "packaging failed at " + e.Stage
}

func (e *PackagingError) Unwrap() error { return e.Err }
