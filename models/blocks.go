package models

import "slices"

const (
	BlockKindProduct = "product"
	DefaultBlockName = "Untitled Block"
)

// BlockTag is one {{block ...}} occurrence parsed out of post content.
type BlockTag struct {
	Kind     string   `json:"kind"`
	Name     string   `json:"name"`
	Image    string   `json:"image,omitempty"`
	SKUs     []string `json:"skus"`
	RawMatch string   `json:"rawMatch"`

	// Index is the ordinal of the tag in its document and Offset the byte
	// position of RawMatch in the content it was extracted from.
	Index  int `json:"index"`
	Offset int `json:"offset"`
}

func (b BlockTag) HasImage() bool { return b.Image != "" }

// Equal compares the parsed fields of two tags and ignores Index and Offset.
func (b BlockTag) Equal(o BlockTag) bool {
	return b.Kind == o.Kind &&
		b.Name == o.Name &&
		b.Image == o.Image &&
		b.RawMatch == o.RawMatch &&
		slices.Equal(b.SKUs, o.SKUs)
}

type SegmentKind string

const (
	SegmentText  SegmentKind = "text"
	SegmentBlock SegmentKind = "block"
)

// Segment is one ordered unit of composited content. Text segments carry
// HTML, block segments carry the tag they stand for.
type Segment struct {
	Kind  SegmentKind `json:"kind"`
	HTML  string      `json:"html,omitempty"`
	Block *BlockTag   `json:"block,omitempty"`
}

func TextSegment(html string) Segment {
	return Segment{Kind: SegmentText, HTML: html}
}

func BlockSegment(tag BlockTag) Segment {
	return Segment{Kind: SegmentBlock, Block: &tag}
}

func (s Segment) IsBlock() bool { return s.Kind == SegmentBlock && s.Block != nil }
