package seeds_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rohmanhakim/sitemap-crawler/internal/seeds"
	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := strings.NewReader(`
# primary sitemaps
https://example.com/sitemap.xml

https://example.com/docs/getting-started
  https://example.com/sitemap-news.XML
# trailing comment
`)

	parsed, err := seeds.Parse(input)
	require.Nil(t, err)
	require.Len(t, parsed, 3)

	assert.Equal(t, "https://example.com/sitemap.xml", parsed[0].String())
	assert.Equal(t, "https://example.com/docs/getting-started", parsed[1].String())
	assert.Equal(t, "https://example.com/sitemap-news.XML", parsed[2].String())
}

func TestParse_EmptyInput(t *testing.T) {
	parsed, err := seeds.Parse(strings.NewReader("\n# only comments\n\n"))
	require.Nil(t, err)
	assert.Empty(t, parsed)
}

func TestSeed_IsSitemap(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://example.com/sitemap.xml", true},
		{"https://example.com/SITEMAP.XML", true},
		{"https://example.com/docs/page", false},
		{"https://example.com/feed.xml?page=2", false},
		{"https://example.com/xml-guide", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, seeds.NewSeed(tt.raw).IsSitemap(), "seed %q", tt.raw)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seeds.txt")
	content := "https://example.com/sitemap.xml\nhttps://example.com/about\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	loaded, err := seeds.Load(path)
	require.Nil(t, err)
	require.Len(t, loaded, 2)
	assert.True(t, loaded[0].IsSitemap())
	assert.False(t, loaded[1].IsSitemap())
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	_, err := seeds.Load(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	require.NotNil(t, err)
	assert.Equal(t, failure.SeverityFatal, err.Severity())
}
