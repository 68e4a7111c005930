package search

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/ternarybob/arbor"

	"blockpress/models"
	"blockpress/posts"
	"blockpress/storage"
	"blockpress/utils"
)

const (
	SourceIndex  = "index"
	SourceFilter = "filter"

	DefaultResultLimit = 50
)

// Searcher resolves a query to post IDs, newest first.
type Searcher interface {
	Query(ctx context.Context, q string, limit int) ([]string, error)
}

type Result struct {
	Query  string               `json:"query"`
	Source string               `json:"source"`
	Posts  []models.PostSummary `json:"posts"`
	Total  int                  `json:"total"`
}

type Handler struct {
	posts  *posts.Service
	index  Searcher
	limit  int
	logger arbor.ILogger
}

// NewHandler builds the search endpoint. A nil index makes every query go
// through the post filter.
func NewHandler(service *posts.Service, index Searcher, limit int, logger arbor.ILogger) *Handler {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	return &Handler{posts: service, index: index, limit: limit, logger: logger}
}

// Search handles GET /api/search?q=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing search query")
		return
	}

	if h.index != nil {
		found, err := h.fromIndex(r.Context(), q)
		if err == nil {
			utils.RespondWithJSON(w, http.StatusOK, Result{Query: q, Source: SourceIndex, Posts: found, Total: len(found)})
			return
		}
		h.logger.Warn().Err(err).Str("query", q).Msg("Search index unavailable, falling back to filter")
	}

	list, err := h.posts.List(r.Context(), posts.Filter{Search: q, Limit: h.limit})
	if err != nil {
		h.logger.Error().Err(err).Str("query", q).Msg("Search failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to search posts")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, Result{Query: q, Source: SourceFilter, Posts: list.Posts, Total: list.Total})
}

// fromIndex loads the posts behind the matched IDs. IDs of posts deleted
// since they were indexed are skipped.
func (h *Handler) fromIndex(ctx context.Context, q string) ([]models.PostSummary, error) {
	ids, err := h.index.Query(ctx, q, h.limit)
	if err != nil {
		return nil, err
	}

	found := make([]models.Post, 0, len(ids))
	for _, id := range ids {
		post, err := h.posts.Get(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		found = append(found, *post)
	}
	return posts.Summaries(found), nil
}
