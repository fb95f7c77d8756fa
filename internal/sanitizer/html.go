/*
Responsibilities
- Strip non-content markup before the full-document fallback extraction
- Keep the extractor's fallback text free of script bodies, style rules
  and other embedded non-visible payloads

The sanitizer mutates the document it is given; callers own the document
lifetime and parse one document per URL.
*/
package sanitizer

import (
	"github.com/PuerkitoBio/goquery"
)

// nonContentSelectors lists markup that never contributes visible page
// text. head is included: title and meta text must not leak into the
// fallback body text.
var nonContentSelectors = []string{
	"script",
	"style",
	"noscript",
	"template",
	"iframe",
	"head",
	"svg",
}

// StripNonContent removes all non-content elements from the document.
func StripNonContent(doc *goquery.Document) {
	for _, selector := range nonContentSelectors {
		doc.Find(selector).Remove()
	}
}
