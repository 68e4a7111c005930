package blocks

import (
	"regexp"
	"strings"

	"blockpress/models"
)

var (
	// tagPattern takes the shortest span from "{{block" to the first "}}".
	// Group 1 is the attribute list, absent for a bare {{block}}.
	tagPattern = regexp.MustCompile(`\{\{block(?:\s([^}]*))?\}\}`)

	namePattern     = regexp.MustCompile(`name=["']([^"']+)["']`)
	imagePattern    = regexp.MustCompile(`image=["']([^"']+)["']`)
	productsPattern = regexp.MustCompile(`products=["']([^"']+)["']`)
)

// Extract returns every block tag in content in document order. Identical
// tags appearing twice produce two records.
func Extract(content string) []models.BlockTag {
	locs := tagPattern.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}

	tags := make([]models.BlockTag, 0, len(locs))
	for i, loc := range locs {
		var attrs string
		if loc[2] >= 0 {
			attrs = content[loc[2]:loc[3]]
		}
		tag := parseAttributes(attrs)
		tag.RawMatch = content[loc[0]:loc[1]]
		tag.Index = i
		tag.Offset = loc[0]
		tags = append(tags, tag)
	}
	return tags
}

// Count reports how many tags Extract would return.
func Count(content string) int {
	return len(tagPattern.FindAllStringIndex(content, -1))
}

// Strip removes every block tag from content.
func Strip(content string) string {
	return tagPattern.ReplaceAllLiteralString(content, "")
}

func parseAttributes(attrs string) models.BlockTag {
	tag := models.BlockTag{
		Kind: models.BlockKindProduct,
		Name: models.DefaultBlockName,
		SKUs: []string{},
	}
	if m := namePattern.FindStringSubmatch(attrs); m != nil {
		tag.Name = m[1]
	}
	if m := imagePattern.FindStringSubmatch(attrs); m != nil {
		tag.Image = m[1]
	}
	if m := productsPattern.FindStringSubmatch(attrs); m != nil {
		tag.SKUs = SplitSKUs(m[1])
	}
	return tag
}

// SplitSKUs splits a comma separated SKU list, trimming each entry and
// dropping empty ones. Order and duplicates are kept.
func SplitSKUs(list string) []string {
	skus := []string{}
	for _, part := range strings.Split(list, ",") {
		if sku := strings.TrimSpace(part); sku != "" {
			skus = append(skus, sku)
		}
	}
	return skus
}
