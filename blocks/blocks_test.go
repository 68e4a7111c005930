package blocks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockpress/models"
)

func TestExtract_NoTags(t *testing.T) {
	assert.Empty(t, Extract("no tags here"))
	assert.Empty(t, Extract(""))
}

func TestExtract_TrimsSKUs(t *testing.T) {
	tags := Extract(`{{block name="X" products="a, b ,c"}}`)
	require.Len(t, tags, 1)

	tag := tags[0]
	assert.Equal(t, models.BlockKindProduct, tag.Kind)
	assert.Equal(t, "X", tag.Name)
	assert.Equal(t, []string{"a", "b", "c"}, tag.SKUs)
	assert.False(t, tag.HasImage())
	assert.Equal(t, `{{block name="X" products="a, b ,c"}}`, tag.RawMatch)
}

func TestExtract_BareTagUsesDefaults(t *testing.T) {
	tags := Extract(`{{block}}`)
	require.Len(t, tags, 1)

	assert.Equal(t, models.DefaultBlockName, tags[0].Name)
	assert.NotNil(t, tags[0].SKUs)
	assert.Empty(t, tags[0].SKUs)
	assert.Empty(t, tags[0].Image)
	assert.Equal(t, "{{block}}", tags[0].RawMatch)
}

func TestExtract_Attributes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    models.BlockTag
	}{
		{
			name:    "double quotes",
			content: `{{block name="Top Development Tools" image="/top-products.png" products="SKU123,SKU456,SKU789"}}`,
			want: models.BlockTag{
				Name:  "Top Development Tools",
				Image: "/top-products.png",
				SKUs:  []string{"SKU123", "SKU456", "SKU789"},
			},
		},
		{
			name:    "single quotes",
			content: `{{block name='Gear' image='/gear.png' products='SKU1'}}`,
			want:    models.BlockTag{Name: "Gear", Image: "/gear.png", SKUs: []string{"SKU1"}},
		},
		{
			name:    "any order with unrecognised text",
			content: `{{block products="SKU9" layout=grid image="/x.png" data-x="1" name="Mixed"}}`,
			want:    models.BlockTag{Name: "Mixed", Image: "/x.png", SKUs: []string{"SKU9"}},
		},
		{
			name:    "empty sku pieces dropped",
			content: `{{block products=" a,, ,b,"}}`,
			want:    models.BlockTag{Name: models.DefaultBlockName, SKUs: []string{"a", "b"}},
		},
		{
			name:    "empty name falls back",
			content: `{{block name="" products="a"}}`,
			want:    models.BlockTag{Name: models.DefaultBlockName, SKUs: []string{"a"}},
		},
		{
			name:    "only image",
			content: `{{block image="/only.png"}}`,
			want:    models.BlockTag{Name: models.DefaultBlockName, Image: "/only.png", SKUs: []string{}},
		},
		{
			name:    "newline before attributes",
			content: "{{block\n  name=\"Wrapped\"}}",
			want:    models.BlockTag{Name: "Wrapped", SKUs: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := Extract(tt.content)
			require.Len(t, tags, 1)
			got := tags[0]
			assert.Equal(t, tt.want.Name, got.Name)
			assert.Equal(t, tt.want.Image, got.Image)
			assert.Equal(t, tt.want.SKUs, got.SKUs)
			assert.Equal(t, tt.content, got.RawMatch)
		})
	}
}

func TestExtract_NotATag(t *testing.T) {
	for _, content := range []string{
		`{{block name="X"`,
		`{{block name="a}b"}}`,
		`{{blockquote}}`,
		`{block name="X"}`,
		`{{ block name="X"}}`,
	} {
		assert.Empty(t, Extract(content), content)
		assert.Zero(t, Count(content), content)
	}
}

func TestExtract_DocumentOrderAndOffsets(t *testing.T) {
	content := "Intro {{block name=\"A\"}} middle {{block name=\"B\" products=\"x\"}}\n\n## After\n{{block}} end"
	tags := Extract(content)
	require.Len(t, tags, 3)
	assert.Equal(t, 3, Count(content))

	names := []string{"A", "B", models.DefaultBlockName}
	for i, tag := range tags {
		assert.Equal(t, i, tag.Index)
		assert.Equal(t, names[i], tag.Name)
		assert.Equal(t, tag.RawMatch, content[tag.Offset:tag.Offset+len(tag.RawMatch)])
		if i > 0 {
			assert.Greater(t, tag.Offset, tags[i-1].Offset)
		}
	}
}

func TestExtract_MatchesDoNotOverlap(t *testing.T) {
	tests := []struct {
		content string
		want    []string
	}{
		{"{{block a {{block b}}", []string{"{{block a {{block b}}"}},
		{"{{block {{block}}}}", []string{"{{block {{block}}"}},
		{"{{block}}{{block}}", []string{"{{block}}", "{{block}}"}},
		{"{{block x}} {{block y}}}", []string{"{{block x}}", "{{block y}}"}},
		{"{{block a}b}}", nil},
	}
	for _, tt := range tests {
		tags := Extract(tt.content)
		var raws []string
		for _, tag := range tags {
			raws = append(raws, tag.RawMatch)
		}
		assert.Equal(t, tt.want, raws, tt.content)
		assert.Equal(t, len(tt.want), Count(tt.content), tt.content)
	}
}

func TestExtract_DuplicateTagsStaySeparate(t *testing.T) {
	raw := `{{block name="Same" products="a,b"}}`
	content := raw + " between " + raw
	tags := Extract(content)
	require.Len(t, tags, 2)

	assert.True(t, tags[0].Equal(tags[1]))
	assert.NotEqual(t, tags[0].Offset, tags[1].Offset)
	assert.Equal(t, 0, tags[0].Index)
	assert.Equal(t, 1, tags[1].Index)
}

func TestExtract_ShortestSpan(t *testing.T) {
	content := `{{block name="A"}}{{block name="B"}}`
	tags := Extract(content)
	require.Len(t, tags, 2)
	assert.Equal(t, `{{block name="A"}}`, tags[0].RawMatch)
	assert.Equal(t, `{{block name="B"}}`, tags[1].RawMatch)
}

func TestStrip(t *testing.T) {
	content := "one {{block name=\"A\"}}two{{block}} three {{block name=\"X\""
	assert.Equal(t, "one two three {{block name=\"X\"", Strip(content))
}

func TestSplitSKUs(t *testing.T) {
	assert.Equal(t, []string{}, SplitSKUs(""))
	assert.Equal(t, []string{}, SplitSKUs(" , ,"))
	assert.Equal(t, []string{"a", "a", "b"}, SplitSKUs("a,a , b"))
}

func TestSnippet(t *testing.T) {
	content := "## Hello\n\nSome **bold** and *it* [link](http://x) {{block name=\"X\"}} end"
	assert.Equal(t, "Hello\n\nSome bold and it link  end", PlainText(content))
	assert.Equal(t, "Hello Some bold and it link end", Snippet(content, 0))

	long := strings.Repeat("a", 250)
	got := Snippet(long, 200)
	assert.Equal(t, strings.Repeat("a", 200)+"...", got)

	assert.Equal(t, strings.Repeat("a", DefaultSnippetLength)+"...", Snippet(long, -1))
	assert.Equal(t, "short", Snippet("  short  ", 10))
}

func TestSnippet_CountsRunes(t *testing.T) {
	content := strings.Repeat("é", 12)
	assert.Equal(t, strings.Repeat("é", 10)+"...", Snippet(content, 10))
}

func TestReadTime(t *testing.T) {
	assert.Equal(t, 1, ReadTime(""))
	assert.Equal(t, 1, ReadTime("a few words {{block name=\"X\"}}"))
	assert.Equal(t, 3, ReadTime(strings.Repeat("word ", 450)))
}
