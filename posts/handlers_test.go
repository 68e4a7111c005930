package posts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"blockpress/globals"
	"blockpress/models"
)

// asUser stands in for the auth middleware.
func asUser(next httprouter.Handle, userID, username string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), globals.UserIDKey, userID)
		ctx = context.WithValue(ctx, globals.UsernameKey, username)
		next(w, r.WithContext(ctx), ps)
	}
}

func newTestRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	svc, _ := newTestService(t)
	h := NewHandler(svc, arbor.NewLogger())

	router := httprouter.New()
	router.GET("/api/posts", h.GetPosts)
	router.GET("/api/posts/:id", h.GetPost)
	router.GET("/api/posts/:id/render", h.RenderPost)
	router.GET("/api/posts-by-slug/:slug", h.GetPostBySlug)
	router.GET("/api/categories", h.GetCategories)
	router.GET("/api/tags", h.GetTags)
	router.POST("/api/posts", asUser(h.CreatePost, "u1", "jane"))
	router.PUT("/api/posts/:id", asUser(h.UpdatePost, "u1", "jane"))
	router.PUT("/api/other/posts/:id", asUser(h.UpdatePost, "u2", "mallory"))
	router.DELETE("/api/posts/:id", asUser(h.DeletePost, "u1", "jane"))
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandlers_PostLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rr := do(router, http.MethodPost, "/api/posts", `{"title":"Hello Blocks","content":"Intro\n\n{{block name=\"Kit\" products=\"SKU789\"}}","category":"Tech","tags":["Go"]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created models.Post
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "hello-blocks", created.Slug)
	assert.Equal(t, "jane", created.Author)

	rr = do(router, http.MethodGet, "/api/posts/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var view models.PostView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.Len(t, view.Blocks, 1)
	assert.Equal(t, "Kit", view.Blocks[0].Name)
	assert.Contains(t, view.HTML, "Monitor")

	rr = do(router, http.MethodGet, "/api/posts-by-slug/hello-blocks", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(router, http.MethodGet, "/api/posts/"+created.ID+"/render", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<title>Hello Blocks</title>")

	rr = do(router, http.MethodGet, "/api/posts?tags=GO", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list models.PostList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	assert.Empty(t, list.Posts[0].Content)

	rr = do(router, http.MethodGet, "/api/categories", "")
	assert.JSONEq(t, `["Tech"]`, rr.Body.String())
	rr = do(router, http.MethodGet, "/api/tags", "")
	assert.JSONEq(t, `["go"]`, rr.Body.String())

	rr = do(router, http.MethodPut, "/api/other/posts/"+created.ID, `{"content":"mine now"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(router, http.MethodPut, "/api/posts/"+created.ID, `{"title":"Hello Again"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"slug":"hello-again"`)

	rr = do(router, http.MethodDelete, "/api/posts/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Post deleted successfully","id":"`+created.ID+`"}`, rr.Body.String())

	rr = do(router, http.MethodGet, "/api/posts/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Post not found"}`, rr.Body.String())
}

func TestHandlers_BadRequests(t *testing.T) {
	router := newTestRouter(t)

	rr := do(router, http.MethodPost, "/api/posts", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(router, http.MethodPost, "/api/posts", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(router, http.MethodPost, "/api/posts", `{"title":"A","content":"b","coverImage":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(router, http.MethodPost, "/api/posts", `{"title":"Dup","content":"b"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = do(router, http.MethodPost, "/api/posts", `{"title":"dup","content":"c"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(router, http.MethodPut, "/api/posts/whatever", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"No fields to update"}`, rr.Body.String())

	rr = do(router, http.MethodDelete, "/api/posts/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
