// Package blocks finds {{block ...}} tags in post content.
//
// A tag is written inline in the post body:
//
//	{{block name="Top Picks" image="/picks.png" products="SKU123, SKU456"}}
//
// The attribute list is free-form. name, image and products are picked out
// with either quote style and in any order; anything else between them is
// ignored. A tag ends at the first "}}" and cannot contain a "}" of its own,
// so attribute values cannot hold one either.
//
// Extraction never fails: text that does not form a complete tag is left as
// prose and a missing attribute falls back to its default.
package blocks
