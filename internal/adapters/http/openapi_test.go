package http

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The embedded document is the published API contract; keep it loadable and
// self-consistent.
func TestOpenAPIDocument_IsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISpec)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	assert.Equal(t, "ErgoWeb API", doc.Info.Title)

	for _, path := range []string{
		"/api/config",
		"/api/generate",
		"/api/artifacts",
		"/api/download",
		"/api/panel",
		"/api/viewport",
		"/api/events",
	} {
		assert.NotNil(t, doc.Paths.Find(path), "missing path %s", path)
	}
}
