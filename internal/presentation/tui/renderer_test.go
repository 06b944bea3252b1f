package tui_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ergoweb/internal/presentation/tui"
)

func TestRenderer_RendersMarkdown(t *testing.T) {
	render := tui.NewRenderer()

	out, err := render("# Quick Start\n\nEdit the config on the *left*.\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Quick Start")
}
