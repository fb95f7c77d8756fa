package seeds

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

/*
Responsibilities
- Read the line-oriented seed list
- Classify each seed as a sitemap document or a direct page URL

Seed list format
- One seed per line
- Blank lines are ignored
- Lines starting with '#' are comments
- A seed ending in ".xml" is a sitemap document, anything else is a page URL
*/

const sitemapSuffix = ".xml"

type Seed struct {
	raw string
}

func NewSeed(raw string) Seed {
	return Seed{raw: strings.TrimSpace(raw)}
}

func (s Seed) String() string {
	return s.raw
}

// IsSitemap reports whether the seed names a sitemap document,
// recognized by the ".xml" suffix convention.
func (s Seed) IsSitemap() bool {
	return strings.HasSuffix(strings.ToLower(s.raw), sitemapSuffix)
}

// Load reads the seed list from a file.
// A missing or unreadable file is a configuration error: it is fatal and
// surfaced before any network activity.
func Load(path string) ([]Seed, *SeedListError) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SeedListError{
			Message: fmt.Sprintf("cannot open seed list %s: %v", path, err),
			Cause:   ErrCauseSeedListUnreadable,
		}
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads seeds from any line-oriented source.
func Parse(r io.Reader) ([]Seed, *SeedListError) {
	var parsed []Seed
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed = append(parsed, NewSeed(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, &SeedListError{
			Message: fmt.Sprintf("failed reading seed list: %v", err),
			Cause:   ErrCauseSeedListUnreadable,
		}
	}
	return parsed, nil
}
