package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"blockpress/config"
	"blockpress/models"
	"blockpress/posts"
	"blockpress/products"
	"blockpress/render"
	"blockpress/storage/badgerstore"
)

func TestTokenize(t *testing.T) {
	assert.Nil(t, Tokenize("   "))
	assert.Equal(t,
		[]string{"quick", "guide", "#golang", "go", "tooling", "way"},
		Tokenize("The quick guide to #GoLang and Go tooling, the QUICK way... go"),
	)
}

func TestExtractHashtags(t *testing.T) {
	assert.Equal(t, []string{"#go", "#redis"}, ExtractHashtags("learning #Go with #redis today"))
	assert.Nil(t, ExtractHashtags("no tags here"))
}

func TestDocumentTokens(t *testing.T) {
	post := &models.Post{
		Title:    "Desk Setup",
		Author:   "Sarah",
		Category: "Technology",
		Tags:     []string{"hardware"},
		Content:  "Pick a **good** chair.\n\n{{block name=\"Gear\" products=\"SKU123\"}}",
	}
	tokens := DocumentTokens(post)
	assert.Contains(t, tokens, "desk")
	assert.Contains(t, tokens, "sarah")
	assert.Contains(t, tokens, "technology")
	assert.Contains(t, tokens, "chair")
	assert.Contains(t, tokens, "hardware")
	assert.Contains(t, tokens, "#hardware")
	assert.NotContains(t, tokens, "a")
}

func TestIntersect(t *testing.T) {
	lists := [][]string{
		{"p3", "p2", "p1"},
		{"p3", "p1"},
		{"p4", "p3", "p1"},
	}
	assert.Equal(t, []string{"p3", "p1"}, intersect(lists, 0))
	assert.Equal(t, []string{"p3"}, intersect(lists, 1))
	assert.Nil(t, intersect([][]string{{"p1"}, {}}, 0))
	assert.Nil(t, intersect(nil, 0))
}

type fakeSearcher struct {
	ids []string
	err error
}

func (f fakeSearcher) Query(ctx context.Context, q string, limit int) ([]string, error) {
	return f.ids, f.err
}

type recordingIndexer struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingIndexer) IndexPost(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, post.ID)
	return nil
}

func newSeededService(t *testing.T) (*posts.Service, *badgerstore.Store, []models.Post) {
	t.Helper()
	logger := arbor.NewLogger()
	store, err := badgerstore.Open(config.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })

	seeded, err := posts.Seed(context.Background(), store, logger)
	require.NoError(t, err)
	require.Len(t, seeded, 3)

	renderer := render.New(products.NewStaticCatalog(), logger)
	return posts.NewService(store, renderer, logger, posts.WithComments(store)), store, seeded
}

func doSearch(t *testing.T, h *Handler, query string) (*httptest.ResponseRecorder, Result) {
	t.Helper()
	router := httprouter.New()
	router.GET("/api/search", h.Search)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/search"+query, nil))

	var res Result
	if rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	}
	return rr, res
}

func TestSearch_MissingQuery(t *testing.T) {
	svc, _, _ := newSeededService(t)
	rr, _ := doSearch(t, NewHandler(svc, nil, 0, arbor.NewLogger()), "?q=%20")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearch_FallsBackToFilterWithoutIndex(t *testing.T) {
	svc, _, _ := newSeededService(t)
	rr, res := doSearch(t, NewHandler(svc, nil, 0, arbor.NewLogger()), "?q=alex+rivera")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, SourceFilter, res.Source)
	require.Len(t, res.Posts, 1)
	assert.Equal(t, "design-systems-consistent-user-experiences", res.Posts[0].Slug)
	assert.Empty(t, res.Posts[0].Content)
}

func TestSearch_UsesIndex(t *testing.T) {
	svc, _, seeded := newSeededService(t)
	index := fakeSearcher{ids: []string{seeded[2].ID, "deleted-post", seeded[0].ID}}
	rr, res := doSearch(t, NewHandler(svc, index, 10, arbor.NewLogger()), "?q=hardware")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, SourceIndex, res.Source)
	require.Len(t, res.Posts, 2)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, seeded[2].ID, res.Posts[0].ID)
	assert.Equal(t, seeded[0].ID, res.Posts[1].ID)
}

func TestSearch_IndexErrorFallsBack(t *testing.T) {
	svc, _, _ := newSeededService(t)
	index := fakeSearcher{err: errors.New("connection refused")}
	rr, res := doSearch(t, NewHandler(svc, index, 10, arbor.NewLogger()), "?q=alex+rivera")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, SourceFilter, res.Source)
	assert.Len(t, res.Posts, 1)
}

func TestScheduler_Reindex(t *testing.T) {
	_, store, seeded := newSeededService(t)
	ix := &recordingIndexer{}
	s := NewScheduler(store, ix, arbor.NewLogger())

	n, err := s.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(seeded), n)

	var want []string
	for _, p := range seeded {
		want = append(want, p.ID)
	}
	assert.ElementsMatch(t, want, ix.ids)
}

func TestScheduler_StartRejectsBadSchedule(t *testing.T) {
	_, store, _ := newSeededService(t)
	s := NewScheduler(store, &recordingIndexer{}, arbor.NewLogger())
	assert.Error(t, s.Start("not a schedule"))

	s = NewScheduler(store, &recordingIndexer{}, arbor.NewLogger())
	require.NoError(t, s.Start(""))
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
