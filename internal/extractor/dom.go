package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/internal/sanitizer"
	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
)

/*
Responsibilities
- Parse fetched HTML into a DOM tree
- Locate the meaningful content region via the configured selector rules
- Fall back to whitespace-collapsed full-document text when no rule matches

Extraction Policy
- Rules are evaluated in configured order
- A rule matches if it selects at least one node; first match wins
- Matched node texts are whitespace-collapsed and joined with a blank line
- The no-match path is a distinct, always-defined branch: strip non-content
  markup, then collapse the remaining document text
- An empty result is a valid, non-error outcome; the scheduler decides not
  to persist it
*/

type DomExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewDomExtractor(metadataSink metadata.MetadataSink) DomExtractor {
	return DomExtractor{
		metadataSink: metadataSink,
	}
}

// Parse turns raw HTML bytes into a queryable document.
func (d *DomExtractor) Parse(sourceURL url.URL, htmlBytes []byte) (*goquery.Document, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		extractionErr := &ExtractionError{
			Message: fmt.Sprintf("failed to parse HTML: %v", err),
			Cause:   ErrCauseParseFailure,
		}
		d.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"DomExtractor.Parse",
			mapExtractionErrorToMetadataCause(extractionErr),
			extractionErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, sourceURL.String()),
			},
		)
		return nil, extractionErr
	}
	return doc, nil
}

// Extract applies the ordered selector rules with full-document fallback.
// The document is mutated on the fallback path; callers must not reuse it.
func (d *DomExtractor) Extract(doc *goquery.Document, rules []SelectorRule) Extraction {
	for _, rule := range rules {
		selection := doc.Find(rule.Expression())
		if selection.Length() == 0 {
			continue
		}

		var segments []string
		selection.Each(func(_ int, node *goquery.Selection) {
			text := collapseWhitespace(node.Text())
			if text != "" {
				segments = append(segments, text)
			}
		})

		matched := rule
		return Extraction{
			text:         strings.Join(segments, "\n\n"),
			matchedRule:  &matched,
			contentNodes: selection.Nodes,
		}
	}

	// No rule matched (or none configured): whole-document fallback.
	sanitizer.StripNonContent(doc)
	bodyNodes := doc.Find("body").Nodes
	return Extraction{
		text:         collapseWhitespace(doc.Text()),
		matchedRule:  nil,
		contentNodes: bodyNodes,
	}
}

// Title returns the trimmed document title, or empty string.
func (d *DomExtractor) Title(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// collapseWhitespace reduces any run of whitespace to a single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
