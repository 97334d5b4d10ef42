package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bookshelf/internal/apperr"
	"github.com/yourusername/bookshelf/internal/catalog"
	"github.com/yourusername/bookshelf/internal/config"
	"github.com/yourusername/bookshelf/internal/logging"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type browser struct {
	t       *testing.T
	router  http.Handler
	cookies map[string]*http.Cookie
}

func (b *browser) do(method, path, body string) (int, map[string]any) {
	b.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}

	var payload map[string]any
	require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return rec.Code, payload
}

func newTestApp(t *testing.T) (*App, *clock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cat, err := catalog.NewMemory([]catalog.Book{
		{ISBN: "0001", Title: "Things Fall Apart", Author: "Chinua Achebe"},
		{ISBN: "0002", Title: "Pride and Prejudice", Author: "Jane Austen"},
	})
	require.NoError(t, err)

	cfg := &config.Config{
		SessionSecret:      "test-secret",
		TokenTTLMinutes:    60,
		GinMode:            gin.TestMode,
		CORSAllowedOrigins: "http://localhost:5173",
	}
	clk := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	app, err := New(cfg, cat, logging.Nop(), clk.Now)
	require.NoError(t, err)
	return app, clk
}

func newBrowser(t *testing.T, app *App) *browser {
	return &browser{t: t, router: app.Router, cookies: make(map[string]*http.Cookie)}
}

func TestEndToEndReviewLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	alice := newBrowser(t, app)

	status, body := alice.do(http.MethodPost, "/register", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "alice", body["username"])

	status, body = alice.do(http.MethodPost, "/login", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, body = alice.do(http.MethodPut, "/auth/review/0001", `{"review":"Great book"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Things Fall Apart", body["book"])

	status, body = alice.do(http.MethodGet, "/review/0001", "")
	require.Equal(t, http.StatusOK, status)
	reviews := body["reviews"].(map[string]any)
	require.Contains(t, reviews, "alice")
	assert.Equal(t, "Great book", reviews["alice"].(map[string]any)["review"])

	status, body = alice.do(http.MethodDelete, "/auth/review/0001", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Things Fall Apart", body["book"])

	status, body = alice.do(http.MethodGet, "/review/0001", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["reviews"])

	status, _ = alice.do(http.MethodDelete, "/auth/review/0001", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAuthenticatedRoutesRequireSession(t *testing.T) {
	app, _ := newTestApp(t)
	anon := newBrowser(t, app)

	status, body := anon.do(http.MethodPut, "/auth/review/0001", `{"review":"sneaky"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperr.CodeUnauthorized, body["code"])

	status, _ = anon.do(http.MethodDelete, "/auth/review/0001", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = anon.do(http.MethodGet, "/review/0001", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestExpiredSessionMustLogInAgain(t *testing.T) {
	app, clk := newTestApp(t)
	alice := newBrowser(t, app)

	alice.do(http.MethodPost, "/register", `{"username":"alice","password":"secret1"}`)
	status, _ := alice.do(http.MethodPost, "/login", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status)

	clk.Advance(time.Hour - time.Second)
	status, _ = alice.do(http.MethodPut, "/auth/review/0002", `{"review":"still valid"}`)
	require.Equal(t, http.StatusOK, status)

	clk.Advance(time.Second)
	status, body := alice.do(http.MethodPut, "/auth/review/0002", `{"review":"too late"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperr.CodeSessionExpired, body["code"])
	assert.Zero(t, app.Sessions.Len())

	status, body = alice.do(http.MethodPut, "/auth/review/0002", `{"review":"again"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperr.CodeUnauthorized, body["code"])

	status, _ = alice.do(http.MethodPost, "/login", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = alice.do(http.MethodPut, "/auth/review/0002", `{"review":"back again"}`)
	assert.Equal(t, http.StatusOK, status)

	_, body = alice.do(http.MethodGet, "/review/0002", "")
	reviews := body["reviews"].(map[string]any)
	assert.Equal(t, "back again", reviews["alice"].(map[string]any)["review"])
}

func TestUsersCannotTouchEachOthersReviews(t *testing.T) {
	app, _ := newTestApp(t)
	alice := newBrowser(t, app)
	bob := newBrowser(t, app)

	for _, u := range []struct {
		b    *browser
		body string
	}{
		{alice, `{"username":"alice","password":"secret1"}`},
		{bob, `{"username":"bob","password":"secret2"}`},
	} {
		status, _ := u.b.do(http.MethodPost, "/register", u.body)
		require.Equal(t, http.StatusCreated, status)
		status, _ = u.b.do(http.MethodPost, "/login", u.body)
		require.Equal(t, http.StatusOK, status)
	}

	status, _ := bob.do(http.MethodPut, "/auth/review/0001", `{"review":"bob was here"}`)
	require.Equal(t, http.StatusOK, status)

	status, body := alice.do(http.MethodDelete, "/auth/review/0001", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperr.CodeReviewNotFound, body["code"])

	status, _ = alice.do(http.MethodPut, "/auth/review/0001", `{"review":"alice too"}`)
	require.Equal(t, http.StatusOK, status)

	_, body = alice.do(http.MethodGet, "/review/0001", "")
	reviews := body["reviews"].(map[string]any)
	assert.Len(t, reviews, 2)
	assert.Equal(t, "bob was here", reviews["bob"].(map[string]any)["review"])
}

func TestCatalogReadsIncludeReviews(t *testing.T) {
	app, _ := newTestApp(t)
	alice := newBrowser(t, app)

	alice.do(http.MethodPost, "/register", `{"username":"alice","password":"secret1"}`)
	status, _ := alice.do(http.MethodPost, "/login", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status)

	status, body := alice.do(http.MethodGet, "/isbn/0001", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["reviews"])

	status, _ = alice.do(http.MethodPut, "/auth/review/0001", `{"review":"Great book"}`)
	require.Equal(t, http.StatusOK, status)

	status, body = alice.do(http.MethodGet, "/isbn/0001", "")
	require.Equal(t, http.StatusOK, status)
	reviews := body["reviews"].(map[string]any)
	assert.Equal(t, "Great book", reviews["alice"].(map[string]any)["review"])

	_, body = alice.do(http.MethodGet, "/", "")
	listed := body["0001"].(map[string]any)["reviews"].(map[string]any)
	assert.Contains(t, listed, "alice")
	assert.Empty(t, body["0002"].(map[string]any)["reviews"])
}

func TestRegisterStatusCodes(t *testing.T) {
	app, _ := newTestApp(t)
	b := newBrowser(t, app)

	status, _ := b.do(http.MethodPost, "/register", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, status)

	status, _ = b.do(http.MethodPost, "/register", `{"username":"alice","password":"different"}`)
	assert.Equal(t, http.StatusConflict, status)
	status, _ = b.do(http.MethodPost, "/register", `{"username":"carol","password":"12345"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = b.do(http.MethodPost, "/register", `{"password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = b.do(http.MethodPost, "/login", `{"username":"carol","password":"12345"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCatalogRoutesAndHealth(t *testing.T) {
	app, _ := newTestApp(t)
	b := newBrowser(t, app)

	status, body := b.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = b.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body, 2)

	status, body = b.do(http.MethodGet, "/isbn/0002", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Jane Austen", body["author"])

	status, _ = b.do(http.MethodGet, "/author/jane%20austen", "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = b.do(http.MethodGet, "/title/fall", "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = b.do(http.MethodGet, "/review/9999", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSeedCatalogAcceptsZeroPaddedISBN(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		SessionSecret:      "test-secret",
		TokenTTLMinutes:    60,
		GinMode:            gin.TestMode,
		CORSAllowedOrigins: "http://localhost:5173",
	}
	cat, err := LoadCatalog(cfg)
	require.NoError(t, err)
	app, err := New(cfg, cat, logging.Nop(), nil)
	require.NoError(t, err)
	alice := newBrowser(t, app)

	alice.do(http.MethodPost, "/register", `{"username":"alice","password":"secret1"}`)
	status, _ := alice.do(http.MethodPost, "/login", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status)

	status, body := alice.do(http.MethodPut, "/auth/review/0001", `{"review":"Great book"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Things Fall Apart", body["book"])

	status, body = alice.do(http.MethodGet, "/review/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1", body["isbn"])
	assert.Contains(t, body["reviews"], "alice")
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitOrigins(" http://a, ,http://b "))
	assert.Equal(t, []string{"http://localhost:5173"}, splitOrigins(""))
}
