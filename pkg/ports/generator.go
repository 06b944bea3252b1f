package ports

import (
	"context"

	"github.com/aretw0/ergoweb/pkg/domain"
)

// Generator is the Generation Service boundary: configuration in, artifact
// set out. The generator's internals (geometry, footprints, previews) are
// opaque to the core; only this surface matters.
//
// Generate must honor ctx cancellation: a superseded run may be abandoned
// while still in flight.
type Generator interface {
	Generate(ctx context.Context, cfg domain.Configuration) ([]domain.Artifact, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, cfg domain.Configuration) ([]domain.Artifact, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, cfg domain.Configuration) ([]domain.Artifact, error) {
	return f(ctx, cfg)
}
