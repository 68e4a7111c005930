package utils

import (
	"net/http"
	"strconv"
)

const maxLimit = 100

type QueryOptions struct {
	Page     int
	Limit    int
	Search   string
	Category string
	Tags     []string
	Sort     string
}

// Offset is the number of items before the requested page.
func (o QueryOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

func ParseQueryOptions(r *http.Request) QueryOptions {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return QueryOptions{
		Page:     page,
		Limit:    limit,
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Tags:     SplitTags(q.Get("tags")),
		Sort:     q.Get("sort"),
	}
}
