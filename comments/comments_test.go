package comments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"blockpress/config"
	"blockpress/globals"
	"blockpress/live"
	"blockpress/models"
	"blockpress/storage/badgerstore"
)

type recorder struct {
	mu     sync.Mutex
	events []live.Event
}

func (r *recorder) Publish(ev live.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Action
	}
	return out
}

func asUser(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		user := r.Header.Get("X-Test-User")
		ctx := context.WithValue(r.Context(), globals.UserIDKey, user)
		ctx = context.WithValue(ctx, globals.UsernameKey, "name-"+user)
		next(w, r.WithContext(ctx), ps)
	}
}

func setup(t *testing.T) (*httprouter.Router, *recorder) {
	t.Helper()
	store, err := badgerstore.Open(config.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")}, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })

	require.NoError(t, store.CreatePost(context.Background(), &models.Post{ID: "p1", Slug: "p1", Title: "P1", PublishedAt: time.Now()}))
	require.NoError(t, store.CreatePost(context.Background(), &models.Post{ID: "p2", Slug: "p2", Title: "P2", PublishedAt: time.Now()}))

	rec := &recorder{}
	h := NewHandler(store, store, rec, arbor.NewLogger())
	router := httprouter.New()
	router.GET("/api/posts/:id/comments", h.GetComments)
	router.POST("/api/posts/:id/comments", asUser(h.CreateComment))
	router.PUT("/api/posts/:id/comments/:commentid", asUser(h.UpdateComment))
	router.DELETE("/api/posts/:id/comments/:commentid", asUser(h.DeleteComment))
	router.POST("/api/posts/:id/comments/:commentid/like", asUser(h.LikeComment))
	return router, rec
}

func call(router http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Test-User", user)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func create(t *testing.T, router http.Handler, postID, user, body string) models.Comment {
	t.Helper()
	rr := call(router, http.MethodPost, "/api/posts/"+postID+"/comments", user, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var c models.Comment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
	return c
}

func TestComments_ThreadsAndReplies(t *testing.T) {
	router, rec := setup(t)

	first := create(t, router, "p1", "u1", `{"content":"first"}`)
	assert.Equal(t, "name-u1", first.Author)
	assert.Equal(t, "u1", first.CreatedBy)

	time.Sleep(2 * time.Millisecond)
	second := create(t, router, "p1", "u2", `{"content":"second"}`)
	reply := create(t, router, "p1", "u2", `{"content":"reply","parentId":"`+first.ID+`"}`)
	assert.Equal(t, first.ID, reply.ParentID)

	// replies to replies and cross-post replies are rejected
	rr := call(router, http.MethodPost, "/api/posts/p1/comments", "u1", `{"content":"deep","parentId":"`+reply.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = call(router, http.MethodPost, "/api/posts/p2/comments", "u1", `{"content":"x","parentId":"`+first.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(router, http.MethodGet, "/api/posts/p1/comments", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var page models.CommentPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Comments, 2)
	assert.Equal(t, second.ID, page.Comments[0].ID)
	assert.Empty(t, page.Comments[0].Replies)
	require.Len(t, page.Comments[1].Replies, 1)
	assert.Equal(t, reply.ID, page.Comments[1].Replies[0].ID)

	rr = call(router, http.MethodGet, "/api/posts/p1/comments?sort=old&limit=1&page=2", "", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Comments, 1)
	assert.Equal(t, second.ID, page.Comments[0].ID)

	assert.Equal(t, []string{live.ActionCreated, live.ActionCreated, live.ActionCreated}, rec.actions())
}

func TestComments_LikesAndSort(t *testing.T) {
	router, rec := setup(t)

	a := create(t, router, "p1", "u1", `{"content":"a"}`)
	create(t, router, "p1", "u1", `{"content":"b"}`)

	for i := 0; i < 2; i++ {
		rr := call(router, http.MethodPost, "/api/posts/p1/comments/"+a.ID+"/like", "u2", "")
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := call(router, http.MethodPost, "/api/posts/p2/comments/"+a.ID+"/like", "u2", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = call(router, http.MethodGet, "/api/posts/p1/comments?sort=likes", "", "")
	var page models.CommentPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Comments, 2)
	assert.Equal(t, a.ID, page.Comments[0].ID)
	assert.Equal(t, 2, page.Comments[0].Likes)

	assert.Contains(t, rec.actions(), live.ActionLiked)
}

func TestComments_OwnerOnlyEditAndDelete(t *testing.T) {
	router, rec := setup(t)

	c := create(t, router, "p1", "u1", `{"content":"mine"}`)
	create(t, router, "p1", "u2", `{"content":"reply","parentId":"`+c.ID+`"}`)

	rr := call(router, http.MethodPut, "/api/posts/p1/comments/"+c.ID, "u2", `{"content":"stolen"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = call(router, http.MethodPut, "/api/posts/p1/comments/"+c.ID, "u1", `{"content":"edited"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"content":"edited"`)

	rr = call(router, http.MethodDelete, "/api/posts/p1/comments/"+c.ID, "u2", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = call(router, http.MethodDelete, "/api/posts/p1/comments/"+c.ID, "u1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = call(router, http.MethodGet, "/api/posts/p1/comments", "", "")
	assert.Contains(t, rr.Body.String(), `"total":0`)

	rec.mu.Lock()
	last := rec.events[len(rec.events)-1]
	rec.mu.Unlock()
	assert.Equal(t, live.ActionDeleted, last.Action)
	assert.Equal(t, 2, last.Removed)
}

func TestComments_BadRequests(t *testing.T) {
	router, _ := setup(t)

	rr := call(router, http.MethodPost, "/api/posts/p1/comments", "u1", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Comment cannot be empty"}`, rr.Body.String())

	rr = call(router, http.MethodPost, "/api/posts/p1/comments", "u1", `{"content":"x","parentId":"not-a-uuid"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(router, http.MethodPost, "/api/posts/nope/comments", "u1", `{"content":"x"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = call(router, http.MethodGet, "/api/posts/nope/comments", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = call(router, http.MethodPut, "/api/posts/p1/comments/missing", "u1", `{"content":"x"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestThreads(t *testing.T) {
	now := time.Now()
	threads := Threads([]models.Comment{
		{ID: "b", CreatedAt: now},
		{ID: "r2", ParentID: "a", CreatedAt: now.Add(2 * time.Second)},
		{ID: "a", CreatedAt: now.Add(-time.Second)},
		{ID: "r1", ParentID: "a", CreatedAt: now.Add(time.Second)},
		{ID: "orphan", ParentID: "gone", CreatedAt: now},
	})
	require.Len(t, threads, 2)
	assert.Equal(t, "b", threads[0].ID)
	assert.Equal(t, "a", threads[1].ID)
	require.Len(t, threads[1].Replies, 2)
	assert.Equal(t, "r1", threads[1].Replies[0].ID)
	assert.Equal(t, "r2", threads[1].Replies[1].ID)
}
