package storage_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/rohmanhakim/sitemap-crawler/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err, "invalid url %q", raw)
	return *u
}

func TestMapPath(t *testing.T) {
	mapper := storage.NewPathMapper(false)

	tests := []struct {
		name       string
		in         string
		wantDomain string
		wantPath   string
	}{
		{
			name:       "simple path",
			in:         "https://example.com/docs/install",
			wantDomain: "example.com",
			wantPath:   "docs_install.md",
		},
		{
			name:       "root path becomes index",
			in:         "https://example.com/",
			wantDomain: "example.com",
			wantPath:   "index.md",
		},
		{
			name:       "empty path becomes index",
			in:         "https://example.com",
			wantDomain: "example.com",
			wantPath:   "index.md",
		},
		{
			name:       "www stripped from domain",
			in:         "https://www.example.com/docs",
			wantDomain: "example.com",
			wantPath:   "docs.md",
		},
		{
			name:       "trailing slash trimmed",
			in:         "https://example.com/docs/install/",
			wantDomain: "example.com",
			wantPath:   "docs_install.md",
		},
		{
			name:       "percent-encoded char flattened",
			in:         "https://example.com/docs/a%20b",
			wantDomain: "example.com",
			wantPath:   "docs_a b.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domain, path := mapper.MapPath(mustURL(t, tt.in))
			assert.Equal(t, tt.wantDomain, domain)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestMapPath_Deterministic(t *testing.T) {
	mapper := storage.NewPathMapper(false)
	pageURL := mustURL(t, "https://example.com/docs/install")

	d1, p1 := mapper.MapPath(pageURL)
	d2, p2 := mapper.MapPath(pageURL)

	assert.Equal(t, d1, d2)
	assert.Equal(t, p1, p2)
}

func TestMapPath_QueryVariantsCollideWithoutHashSuffix(t *testing.T) {
	// Documented contract: flattening can collide, last write wins.
	mapper := storage.NewPathMapper(false)

	_, plain := mapper.MapPath(mustURL(t, "https://example.com/docs"))
	_, withQuery := mapper.MapPath(mustURL(t, "https://example.com/docs?page=2"))

	assert.Equal(t, plain, withQuery)
}

func TestMapPath_HashSuffixDisambiguates(t *testing.T) {
	mapper := storage.NewPathMapper(true)

	_, plain := mapper.MapPath(mustURL(t, "https://example.com/docs"))
	_, withQuery := mapper.MapPath(mustURL(t, "https://example.com/docs?page=2"))

	assert.NotEqual(t, plain, withQuery)
	assert.True(t, strings.HasSuffix(plain, ".md"))
	assert.True(t, strings.HasSuffix(withQuery, ".md"))
}
