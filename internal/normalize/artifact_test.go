package normalize_test

import (
	"testing"

	"github.com/rohmanhakim/sitemap-crawler/internal/normalize"
	"github.com/stretchr/testify/assert"
)

func TestContent_FullHeader(t *testing.T) {
	artifact := normalize.NewArtifact(
		"https://example.com/docs/install",
		"Install Guide",
		"main",
		"Install the tool first.",
		true,
	)

	want := "# https://example.com/docs/install\n\n" +
		"> title: Install Guide\n" +
		"> selector: main\n\n" +
		"Install the tool first.\n"
	assert.Equal(t, want, string(artifact.Content()))
}

func TestContent_HeaderWithoutTitleOrSelector(t *testing.T) {
	artifact := normalize.NewArtifact(
		"https://example.com/docs",
		"",
		"",
		"Body only.",
		true,
	)

	assert.Equal(t, "# https://example.com/docs\n\nBody only.\n", string(artifact.Content()))
}

func TestContent_NoHeader(t *testing.T) {
	artifact := normalize.NewArtifact(
		"https://example.com/docs",
		"Title",
		"main",
		"Just the body.",
		false,
	)

	assert.Equal(t, "Just the body.\n", string(artifact.Content()))
}

func TestContent_TrailingNewlinesStabilized(t *testing.T) {
	artifact := normalize.NewArtifact(
		"https://example.com/docs",
		"",
		"",
		"Body.\n\n\n",
		false,
	)

	assert.Equal(t, "Body.\n", string(artifact.Content()),
		"reruns must produce byte-identical output")
}

func TestContent_Deterministic(t *testing.T) {
	artifact := normalize.NewArtifact("https://example.com/a", "T", "main", "body", true)
	assert.Equal(t, artifact.Content(), artifact.Content())
}
