package blocks

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultSnippetLength = 200
	wordsPerMinute       = 200
)

var (
	headerMarkPattern = regexp.MustCompile(`#+\s*`)
	boldPattern       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern     = regexp.MustCompile(`\*(.*?)\*`)
	linkPattern       = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
)

// PlainText strips block tags and the common markdown markers, keeping link
// text and emphasised words.
func PlainText(content string) string {
	text := Strip(content)
	text = headerMarkPattern.ReplaceAllString(text, "")
	text = boldPattern.ReplaceAllString(text, "$1")
	text = italicPattern.ReplaceAllString(text, "$1")
	text = linkPattern.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// Snippet returns at most max runes of plain text on one line, followed by
// "..." when the text was cut. max <= 0 means DefaultSnippetLength.
func Snippet(content string, max int) string {
	if max <= 0 {
		max = DefaultSnippetLength
	}
	text := strings.Join(strings.Fields(PlainText(content)), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "..."
}

// ReadTime estimates reading time in whole minutes, never less than one.
func ReadTime(content string) int {
	words := len(strings.Fields(PlainText(content)))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
