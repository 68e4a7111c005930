package compositor

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Classes names the class attribute given to each kind of generated element.
type Classes struct {
	Headings      [6]string
	Paragraph     string
	Strong        string
	Emphasis      string
	Code          string
	Pre           string
	Blockquote    string
	UnorderedList string
	OrderedList   string
	ListItem      string
	Link          string
	Rule          string
}

var DefaultClasses = Classes{
	Headings:      [6]string{"bp-h1", "bp-h2", "bp-h3", "bp-h4", "bp-h5", "bp-h6"},
	Paragraph:     "bp-p",
	Strong:        "bp-strong",
	Emphasis:      "bp-em",
	Code:          "bp-code",
	Pre:           "bp-pre",
	Blockquote:    "bp-quote",
	UnorderedList: "bp-ul",
	OrderedList:   "bp-ol",
	ListItem:      "bp-li",
	Link:          "bp-link",
	Rule:          "bp-hr",
}

// For returns the class for n, or "" when n gets none.
func (c Classes) For(n ast.Node) string {
	switch node := n.(type) {
	case *ast.Heading:
		if node.Level >= 1 && node.Level <= len(c.Headings) {
			return c.Headings[node.Level-1]
		}
	case *ast.Paragraph:
		return c.Paragraph
	case *ast.Emphasis:
		if node.Level == 2 {
			return c.Strong
		}
		return c.Emphasis
	case *ast.CodeSpan:
		return c.Code
	case *ast.Blockquote:
		return c.Blockquote
	case *ast.List:
		if node.IsOrdered() {
			return c.OrderedList
		}
		return c.UnorderedList
	case *ast.ListItem:
		return c.ListItem
	case *ast.Link, *ast.AutoLink:
		return c.Link
	case *ast.ThematicBreak:
		return c.Rule
	}
	return ""
}

// Format converts a run of markdown prose to HTML. Raw HTML in the input is
// not passed through.
func (c *Compositor) Format(prose string) string {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(prose), &buf); err != nil {
		buf.Reset()
		buf.WriteString(`<p class="`)
		buf.Write(util.EscapeHTML([]byte(c.classes.Paragraph)))
		buf.WriteString(`">`)
		buf.Write(util.EscapeHTML([]byte(prose)))
		buf.WriteString("</p>\n")
	}
	return buf.String()
}

type classTransformer struct {
	classes Classes
}

func (t *classTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if class := t.classes.For(n); class != "" {
			n.SetAttributeString("class", []byte(class))
		}
		return ast.WalkContinue, nil
	})
}

// codeBlockRenderer replaces goldmark's code block output, which has no
// way to carry attributes on the <pre> element.
type codeBlockRenderer struct {
	class string
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindCodeBlock, r.render)
	reg.Register(ast.KindFencedCodeBlock, r.render)
}

func (r *codeBlockRenderer) render(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString("<pre")
	if r.class != "" {
		_, _ = w.WriteString(` class="`)
		_, _ = w.Write(util.EscapeHTML([]byte(r.class)))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString("><code")
	if fenced, ok := n.(*ast.FencedCodeBlock); ok {
		if lang := fenced.Language(source); lang != nil {
			_, _ = w.WriteString(` class="language-`)
			_, _ = w.Write(util.EscapeHTML(lang))
			_ = w.WriteByte('"')
		}
	}
	_ = w.WriteByte('>')

	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		html.DefaultWriter.RawWrite(w, line.Value(source))
	}
	return ast.WalkContinue, nil
}

// rawHTMLRenderer writes HTML found in prose as escaped text, so the markup
// is shown rather than interpreted and none of its text is lost.
type rawHTMLRenderer struct {
	class string
}

func (r *rawHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHTMLBlock, r.renderBlock)
	reg.Register(ast.KindRawHTML, r.renderInline)
}

func (r *rawHTMLRenderer) renderBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block := n.(*ast.HTMLBlock)

	_, _ = w.WriteString("<p")
	if r.class != "" {
		_, _ = w.WriteString(` class="`)
		_, _ = w.Write(util.EscapeHTML([]byte(r.class)))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')

	var raw []byte
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		raw = append(raw, seg.Value(source)...)
	}
	if block.HasClosure() {
		raw = append(raw, block.ClosureLine.Value(source)...)
	}
	_, _ = w.Write(util.EscapeHTML(bytes.TrimRight(raw, "\n")))
	_, _ = w.WriteString("</p>\n")
	return ast.WalkContinue, nil
}

func (r *rawHTMLRenderer) renderInline(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	segs := n.(*ast.RawHTML).Segments
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		_, _ = w.Write(util.EscapeHTML(seg.Value(source)))
	}
	return ast.WalkSkipChildren, nil
}
