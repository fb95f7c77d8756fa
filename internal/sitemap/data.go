package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Candidate is a page URL produced by resolution, carrying the seed that
// discovered it. It has no identity beyond its URL; deduplication is the
// frontier's job.
type Candidate struct {
	pageURL    url.URL
	seedSource string
}

func NewCandidate(pageURL url.URL, seedSource string) Candidate {
	return Candidate{
		pageURL:    pageURL,
		seedSource: seedSource,
	}
}

func (c *Candidate) URL() url.URL {
	return c.pageURL
}

func (c *Candidate) SeedSource() string {
	return c.seedSource
}

// documentVariant tags the two recognized sitemap document shapes.
type documentVariant int

const (
	variantUnknown documentVariant = iota
	variantIndex
	variantURLSet
)

type document struct {
	variant   documentVariant
	locations []string
}

// Sitemap protocol structs.
// Only direct <loc> children are mapped; auxiliary children such as
// image or video annotations never match and are dropped by the decoder.
type sitemapIndexDoc struct {
	XMLName  xml.Name   `xml:"sitemapindex"`
	Sitemaps []locEntry `xml:"sitemap"`
}

type urlSetDoc struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []locEntry `xml:"url"`
}

type locEntry struct {
	Loc string `xml:"loc"`
}

// parseDocument decodes a sitemap document body into its tagged variant.
// The root element decides the shape; anything else is an unknown variant
// reported to the caller.
func parseDocument(body []byte) (document, error) {
	rootName, err := rootElementName(body)
	if err != nil {
		return document{}, fmt.Errorf("failed to parse sitemap XML: %w", err)
	}

	switch rootName {
	case "sitemapindex":
		var index sitemapIndexDoc
		if err := xml.Unmarshal(body, &index); err != nil {
			return document{}, fmt.Errorf("failed to decode sitemap index: %w", err)
		}
		return document{
			variant:   variantIndex,
			locations: collectLocations(index.Sitemaps),
		}, nil

	case "urlset":
		var set urlSetDoc
		if err := xml.Unmarshal(body, &set); err != nil {
			return document{}, fmt.Errorf("failed to decode URL set: %w", err)
		}
		return document{
			variant:   variantURLSet,
			locations: collectLocations(set.URLs),
		}, nil

	default:
		return document{variant: variantUnknown}, nil
	}
}

// rootElementName returns the local name of the first start element.
func rootElementName(body []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return "", fmt.Errorf("document has no root element")
		}
		if err != nil {
			return "", err
		}
		if start, ok := token.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

// collectLocations trims location text and drops empty entries,
// preserving document order.
func collectLocations(entries []locEntry) []string {
	var locations []string
	for _, entry := range entries {
		location := strings.TrimSpace(entry.Loc)
		if location == "" {
			continue
		}
		locations = append(locations, location)
	}
	return locations
}
