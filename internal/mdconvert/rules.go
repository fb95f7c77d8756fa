package mdconvert

import (
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
	"golang.org/x/net/html"
)

/*
Design Principles
- Semantic fidelity over visual fidelity
- No inferred structure
- No code reformatting
- GitHub-Flavored Markdown compatibility

Conversion Rules
- Headings map directly (h1-h6 to # - ######)
- Code blocks preserved verbatim
- Tables converted structurally (GFM)
- DOM order preserved

Used only in the markdown output mode; the default text mode bypasses
this package entirely.
*/

// ConvertRule defines the interface for rendering extracted content nodes
// as Markdown. Implementations must be deterministic.
type ConvertRule interface {
	Convert(contentNodes []*html.Node) (string, failure.ClassifiedError)
}

// Compile-time interface check
var _ ConvertRule = (*StrictConversionRule)(nil)

type StrictConversionRule struct {
	metadataSink metadata.MetadataSink
}

func NewRule(metadataSink metadata.MetadataSink) *StrictConversionRule {
	return &StrictConversionRule{
		metadataSink: metadataSink,
	}
}

// Convert renders each content node in order and joins them with a blank
// line, mirroring the text mode's node-joining behavior.
func (s *StrictConversionRule) Convert(contentNodes []*html.Node) (string, failure.ClassifiedError) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	var segments []string
	for _, node := range contentNodes {
		if node == nil {
			continue
		}
		markdown, err := conv.ConvertNode(node)
		if err != nil {
			conversionErr := &ConversionError{
				Message: err.Error(),
				Cause:   ErrCauseConversionFailure,
			}
			s.metadataSink.RecordError(
				time.Now(),
				"mdconvert",
				"StrictConversionRule.Convert",
				metadata.CauseContentInvalid,
				conversionErr.Error(),
				[]metadata.Attribute{},
			)
			return "", conversionErr
		}
		segment := strings.TrimSpace(string(markdown))
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	return strings.Join(segments, "\n\n"), nil
}
