package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/ternarybob/arbor"

	"blockpress/models"
	"blockpress/products"
)

const NoProductsMessage = "No products found for the specified SKUs."

var templates = template.Must(template.New("article").Parse(`<article class="bp-article">
{{- range .}}
{{- if .Block}}
<section class="bp-block" data-kind="{{.Block.Kind}}">
  <span class="bp-block-label">DYNAMIC BLOCK</span>
  <h3 class="bp-block-title">{{.Block.Name}}</h3>
  {{- if .Block.Image}}
  <img class="bp-block-image" src="{{.Block.Image}}" alt="{{.Block.Name}}">
  {{- end}}
  {{- if .Block.Products}}
  <div class="bp-products">
    {{- range .Block.Products}}
    <div class="bp-product" data-sku="{{.SKU}}">
      {{- if .Image}}
      <img class="bp-product-image" src="{{.Image}}" alt="{{.Name}}">
      {{- end}}
      <h4 class="bp-product-name">{{.Name}}</h4>
      <p class="bp-product-price">{{.Price}}</p>
      <p class="bp-product-sku">SKU: {{.SKU}}</p>
    </div>
    {{- end}}
  </div>
  {{- else}}
  <p class="bp-block-empty">{{$.Empty}}</p>
  {{- end}}
  <div class="bp-block-source">Generated from: {{.Block.Raw}}</div>
</section>
{{- else}}
{{.Text}}
{{- end}}
{{- end}}
</article>
`))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{- if .Description}}
<meta name="description" content="{{.Description}}">
{{- end}}
</head>
<body>
{{.Body}}
</body>
</html>
`))

type blockView struct {
	Kind     string
	Name     string
	Image    string
	Raw      string
	Products []models.Product
}

type segmentView struct {
	Text  template.HTML
	Block *blockView
}

type articleView []segmentView

// Empty is read by the template through $.
func (articleView) Empty() string { return NoProductsMessage }

// Renderer turns composited segments into HTML, resolving product blocks
// against a catalog.
type Renderer struct {
	catalog products.Catalog
	logger  arbor.ILogger
}

func New(catalog products.Catalog, logger arbor.ILogger) *Renderer {
	return &Renderer{catalog: catalog, logger: logger}
}

// Render writes the segments as one article. Text segments are trusted
// formatter output and are written verbatim. A failing catalog lookup
// renders the block without products.
func (r *Renderer) Render(ctx context.Context, segments []models.Segment) (template.HTML, error) {
	view := make(articleView, 0, len(segments))
	for _, seg := range segments {
		if !seg.IsBlock() {
			view = append(view, segmentView{Text: template.HTML(seg.HTML)})
			continue
		}
		view = append(view, segmentView{Block: r.resolve(ctx, seg.Block)})
	}

	var buf bytes.Buffer
	if err := templates.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render article: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) resolve(ctx context.Context, tag *models.BlockTag) *blockView {
	view := &blockView{
		Kind:  tag.Kind,
		Name:  tag.Name,
		Image: tag.Image,
		Raw:   tag.RawMatch,
	}
	if len(tag.SKUs) == 0 {
		return view
	}
	found, err := r.catalog.BySKUs(ctx, tag.SKUs)
	if err != nil {
		r.logger.Warn().Err(err).Str("block", tag.Name).Strs("skus", tag.SKUs).Msg("Product lookup failed, rendering empty block")
		return view
	}
	view.Products = found
	return view
}

// Page wraps an article in a minimal standalone HTML document.
func Page(title, description string, body template.HTML) (string, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title       string
		Description string
		Body        template.HTML
	}{title, description, body})
	if err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return buf.String(), nil
}
