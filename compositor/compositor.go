// Package compositor turns post content and its extracted block tags into
// an ordered list of segments: formatted prose and block references.
package compositor

import (
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"blockpress/models"
)

// Compositor holds a configured markdown converter. It keeps no per-call
// state and may be shared between goroutines.
type Compositor struct {
	md      goldmark.Markdown
	classes Classes
}

type Option func(*Compositor)

// WithClasses replaces the class table applied to generated elements.
func WithClasses(classes Classes) Option {
	return func(c *Compositor) { c.classes = classes }
}

func New(opts ...Option) *Compositor {
	c := &Compositor{classes: DefaultClasses}
	for _, opt := range opts {
		opt(c)
	}
	c.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(&classTransformer{classes: c.classes}, 100)),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			renderer.WithNodeRenderers(
				util.Prioritized(&codeBlockRenderer{class: c.classes.Pre}, 100),
				util.Prioritized(&rawHTMLRenderer{class: c.classes.Paragraph}, 100),
			),
		),
	)
	return c
}

// Default is the compositor used by the package level functions.
var Default = New()

func Composite(content string, tags []models.BlockTag) []models.Segment {
	return Default.Composite(content, tags)
}

func Format(prose string) string {
	return Default.Format(prose)
}

// span is a claimed byte range of the content and the tag it belongs to.
type span struct {
	start, end int
	tag        int
}

// Composite splits content around the tags' raw text. Each tag claims the
// first occurrence of its RawMatch that no earlier tag has claimed, so
// repeated identical tags bind in extraction order. A tag whose text is not
// found leaves the content alone. Segments come out in document order;
// whitespace-only prose between blocks produces no segment.
func (c *Compositor) Composite(content string, tags []models.BlockTag) []models.Segment {
	if len(tags) == 0 {
		return c.appendProse(nil, content)
	}

	spans := claim(content, tags)
	segments := make([]models.Segment, 0, 2*len(spans)+1)
	pos := 0
	for _, s := range spans {
		segments = c.appendProse(segments, content[pos:s.start])
		segments = append(segments, models.BlockSegment(tags[s.tag]))
		pos = s.end
	}
	return c.appendProse(segments, content[pos:])
}

func (c *Compositor) appendProse(segments []models.Segment, prose string) []models.Segment {
	if strings.TrimSpace(prose) == "" {
		return segments
	}
	return append(segments, models.TextSegment(c.Format(prose)))
}

func claim(content string, tags []models.BlockTag) []span {
	spans := make([]span, 0, len(tags))
	for i, tag := range tags {
		start, ok := firstUnclaimed(content, tag.RawMatch, spans)
		if !ok {
			continue
		}
		s := span{start: start, end: start + len(tag.RawMatch), tag: i}
		at, _ := slices.BinarySearchFunc(spans, s, func(a, b span) int { return a.start - b.start })
		spans = slices.Insert(spans, at, s)
	}
	return spans
}

func firstUnclaimed(content, raw string, claimed []span) (int, bool) {
	if raw == "" {
		return 0, false
	}
	from := 0
	for from+len(raw) <= len(content) {
		idx := strings.Index(content[from:], raw)
		if idx < 0 {
			return 0, false
		}
		start := from + idx
		if !overlaps(claimed, start, start+len(raw)) {
			return start, true
		}
		from = start + 1
	}
	return 0, false
}

func overlaps(claimed []span, start, end int) bool {
	for _, s := range claimed {
		if start < s.end && s.start < end {
			return true
		}
	}
	return false
}
