package normalize

import (
	"strings"
)

/*
Responsibilities
- Assemble the final artifact document: header block + extracted body
- Stabilize trailing whitespace so reruns produce byte-identical output

The header block carries the source URL and, when known, the page title
and the selector that matched. Body content arrives already extracted;
this stage never inspects or rewrites it beyond newline normalization.
*/

type Artifact struct {
	sourceURL     string
	title         string
	selectorUsed  string
	body          string
	includeHeader bool
}

func NewArtifact(
	sourceURL string,
	title string,
	selectorUsed string,
	body string,
	includeHeader bool,
) Artifact {
	return Artifact{
		sourceURL:     sourceURL,
		title:         title,
		selectorUsed:  selectorUsed,
		body:          body,
		includeHeader: includeHeader,
	}
}

func (a *Artifact) SourceURL() string {
	return a.sourceURL
}

func (a *Artifact) Title() string {
	return a.title
}

func (a *Artifact) SelectorUsed() string {
	return a.selectorUsed
}

func (a *Artifact) Body() string {
	return a.body
}

// Content renders the artifact bytes: an optional header block followed by
// the body, terminated by exactly one newline.
func (a *Artifact) Content() []byte {
	var b strings.Builder

	if a.includeHeader {
		b.WriteString("# ")
		b.WriteString(a.sourceURL)
		b.WriteString("\n\n")
		if a.title != "" {
			b.WriteString("> title: ")
			b.WriteString(a.title)
			b.WriteString("\n")
		}
		if a.selectorUsed != "" {
			b.WriteString("> selector: ")
			b.WriteString(a.selectorUsed)
			b.WriteString("\n")
		}
		if a.title != "" || a.selectorUsed != "" {
			b.WriteString("\n")
		}
	}

	b.WriteString(strings.TrimRight(a.body, "\n"))
	b.WriteString("\n")
	return []byte(b.String())
}
