package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnbdoctor/labelops/internal/dispatch"
)

func TestRendererShortTokens(t *testing.T) {
	r := dispatch.NewRenderer()

	out, err := r.Render("Hey {name}, {track} by {artist} is out", map[string]any{
		"name":   "Liza",
		"track":  "Pulse",
		"artist": "Warp Fa2e",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hey Liza, Pulse by Warp Fa2e is out", out)
}

func TestRendererUnknownTokenRendersEmpty(t *testing.T) {
	r := dispatch.NewRenderer()

	out, err := r.Render("Hello {name}{missing}!", map[string]any{"name": "Liza"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Liza!", out)
}

func TestRendererLiquidSyntaxPassesThrough(t *testing.T) {
	r := dispatch.NewRenderer()

	out, err := r.Render("Hello {{ name }}", map[string]any{"name": "Liza"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Liza", out)
}
