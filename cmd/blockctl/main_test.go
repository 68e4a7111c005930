package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"blockpress/middleware"
	"blockpress/models"
)

const samplePost = "# Gear\n\nMy **favourite** tools.\n\n{{block name=\"Desk Gear\" products=\"SKU123,SKU456\"}}\n\nThat is all."

func run(t *testing.T, args ...string) string {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("blockctl"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	ctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, ctx.Run(&App{Out: &out, Logger: arbor.NewLogger()}))
	return out.String()
}

func writePost(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gear.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExtract(t *testing.T) {
	out := run(t, "extract", writePost(t, samplePost))

	var tags []models.BlockTag
	require.NoError(t, json.Unmarshal([]byte(out), &tags))
	require.Len(t, tags, 1)
	assert.Equal(t, "Desk Gear", tags[0].Name)
	assert.Equal(t, []string{"SKU123", "SKU456"}, tags[0].SKUs)
}

func TestExtract_NoBlocksPrintsEmptyArray(t *testing.T) {
	out := run(t, "extract", writePost(t, "just prose"))
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestRender_HTMLPage(t *testing.T) {
	out := run(t, "render", writePost(t, samplePost), "--title", "Gear Guide")
	assert.Contains(t, out, "<title>Gear Guide</title>")
	assert.Contains(t, out, "Mechanical Keyboard")
	assert.Contains(t, out, "Gaming Mouse")
	assert.Contains(t, out, `class="bp-block"`)
}

func TestRender_JSONSegments(t *testing.T) {
	out := run(t, "render", writePost(t, samplePost), "--json")

	var segments []models.Segment
	require.NoError(t, json.Unmarshal([]byte(out), &segments))
	require.Len(t, segments, 3)
	assert.Equal(t, models.SegmentBlock, segments[1].Kind)
}

func TestSnippet(t *testing.T) {
	out := run(t, "snippet", writePost(t, samplePost), "--max", "10")
	assert.Equal(t, "Gear My fa...", strings.TrimSpace(out))
}

func TestToken(t *testing.T) {
	out := run(t, "token", "--user", "u-1", "--username", "jane")

	claims, err := middleware.ParseToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "jane", claims.Username)
}
