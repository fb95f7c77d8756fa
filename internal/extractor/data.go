package extractor

import (
	"strings"

	"golang.org/x/net/html"
)

// SelectorRule is one CSS selector expression in the ordered extraction
// policy. Configuration-level data; read-only during a crawl.
type SelectorRule struct {
	expression string
}

func NewSelectorRule(expression string) SelectorRule {
	return SelectorRule{expression: strings.TrimSpace(expression)}
}

func (r SelectorRule) Expression() string {
	return r.expression
}

// ParseRules splits a comma-separated selector list into ordered rules,
// dropping empty segments. "#primary,.entry-content,main" yields three
// rules in that priority order.
func ParseRules(commaSeparated string) []SelectorRule {
	var rules []SelectorRule
	for _, segment := range strings.Split(commaSeparated, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		rules = append(rules, NewSelectorRule(segment))
	}
	return rules
}

// Extraction is the outcome of applying the selector policy to one
// document. An empty Text is valid; MatchedRule is nil on the fallback
// path. ContentNodes back the optional markdown rendering mode.
type Extraction struct {
	text         string
	matchedRule  *SelectorRule
	contentNodes []*html.Node
}

func (e *Extraction) Text() string {
	return e.text
}

// MatchedRule returns the winning rule and whether any rule matched.
func (e *Extraction) MatchedRule() (SelectorRule, bool) {
	if e.matchedRule == nil {
		return SelectorRule{}, false
	}
	return *e.matchedRule, true
}

func (e *Extraction) ContentNodes() []*html.Node {
	return e.contentNodes
}
