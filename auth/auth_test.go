package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"golang.org/x/crypto/bcrypt"

	"blockpress/config"
	"blockpress/middleware"
	"blockpress/models"
	"blockpress/storage/badgerstore"
)

func newRouter(t *testing.T) (*httprouter.Router, *badgerstore.Store) {
	t.Helper()
	store, err := badgerstore.Open(config.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")}, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })

	svc := NewService(store, time.Hour, arbor.NewLogger())
	svc.cost = bcrypt.MinCost
	h := NewHandler(svc, arbor.NewLogger())

	router := httprouter.New()
	router.POST("/api/auth/register", h.Register)
	router.POST("/api/auth/login", h.Login)
	return router, store
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rr
}

func TestIssueToken(t *testing.T) {
	token, expires, err := IssueToken("u1", "jane", 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), expires, time.Minute)

	claims, err := middleware.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "jane", claims.Username)
}

func TestRegisterAndLogin(t *testing.T) {
	router, store := newRouter(t)

	rr := post(router, "/api/auth/register", `{"username":"Jane","password":"correct horse"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var reg models.TokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reg))
	assert.Equal(t, "jane", reg.Username)
	assert.NotEmpty(t, reg.Token)

	stored, err := store.GetUserByUsername(context.Background(), "jane")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)

	rr = post(router, "/api/auth/register", `{"username":"jane","password":"another one"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = post(router, "/api/auth/login", `{"username":"JANE","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var login models.TokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	assert.Equal(t, reg.UserID, login.UserID)

	claims, err := middleware.ValidateJWT("Bearer " + login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, claims.UserID)

	rr = post(router, "/api/auth/login", `{"username":"jane","password":"wrong password"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = post(router, "/api/auth/login", `{"username":"nobody","password":"whatever1"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegisterValidation(t *testing.T) {
	router, _ := newRouter(t)

	for _, body := range []string{
		`{"username":"ab","password":"longenough"}`,
		`{"username":"has space","password":"longenough"}`,
		`{"username":"jane","password":"short"}`,
		`{"username":"jane"}`,
	} {
		assert.Equal(t, http.StatusBadRequest, post(router, "/api/auth/register", body).Code, body)
	}
}
