package storage

import (
	"slices"
	"sort"
	"strings"

	"blockpress/models"
)

// Match reports whether the post satisfies the query's filters.
// Backends without native querying use it directly.
func (q PostQuery) Match(p *models.Post) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if len(q.Tags) > 0 && !slices.ContainsFunc(q.Tags, func(t string) bool {
		return slices.Contains(p.Tags, t)
	}) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Content), needle) &&
			!strings.Contains(strings.ToLower(p.Author), needle) {
			return false
		}
	}
	return true
}

// Page applies Offset and Limit to an already ordered slice.
func Page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// SortNewestFirst orders posts by PublishedAt descending, ties by ID.
func SortNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].PublishedAt.Equal(posts[j].PublishedAt) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})
}

// SortComments orders comments for ListComments.
func SortComments(comments []models.Comment, order string) {
	sort.SliceStable(comments, func(i, j int) bool {
		a, b := comments[i], comments[j]
		switch order {
		case SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortLikes:
			if a.Likes != b.Likes {
				return a.Likes > b.Likes
			}
			return a.CreatedAt.After(b.CreatedAt)
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}

// Distinct returns the sorted set of non-empty values.
func Distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := []string{}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
