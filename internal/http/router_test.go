package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logo-playground/api/internal/auth"
	"github.com/logo-playground/api/internal/config"
	httpserver "github.com/logo-playground/api/internal/http"
	"github.com/logo-playground/api/internal/logging"
	"github.com/logo-playground/api/internal/memstore"
	"github.com/logo-playground/api/internal/program"
)

// newTestRouter assembles the full router on in-memory stores, the same wiring
// main performs for the memory drivers.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Env: "test",
		},
		Session: config.SessionConfig{
			Store:    config.DriverMemory,
			Duration: time.Hour,
		},
		Storage: config.StorageConfig{
			Driver: config.DriverMemory,
		},
	}

	logger := logging.NewLogger(true)
	sessionManager := auth.NewSessionManager(memstore.NewSessionStore(), cfg.Session.Duration)
	authService := auth.NewService(memstore.NewUserStore())
	programService := program.NewService(memstore.NewProgramStore())

	authHandler := auth.NewHandler(authService, sessionManager, logger, false, cfg.Session.Duration)
	authMiddleware := auth.NewMiddleware(sessionManager)
	programHandler := program.NewHandler(programService, logger)

	return httpserver.NewRouter(cfg, authHandler, authMiddleware, programHandler, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}

func registerUser(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRootAndHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logo Playground API")

	rec = doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "a@x.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "registration must set the session cookie")
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	// The cookie alone authenticates.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	meRec := httptest.NewRecorder()
	router.ServeHTTP(meRec, req)
	assert.Equal(t, http.StatusOK, meRec.Code)
	assert.Contains(t, meRec.Body.String(), "a@x.com")
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "a@x.com", "password123")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "a@x.com",
		"password": "another-password",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMAIL_ALREADY_EXISTS")
}

func TestRegisterValidationFailed(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Fields map[string][]string `json:"fields"`
	}
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Fields, "email")
	assert.Contains(t, resp.Fields, "password")
}

func TestLoginAndNonDisclosure(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "a@x.com", "password123")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	unknown := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@x.com",
		"password": "password123",
	})
	wrong := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestLogoutInvalidatesSession(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "a@x.com", "password123")

	rec := doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The destroyed token no longer opens the gate.
	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "SESSION_INVALID")
}

func TestProgramRoutesRequireSession(t *testing.T) {
	router := newTestRouter(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/programs"},
		{http.MethodPost, "/api/programs"},
		{http.MethodGet, "/api/programs/1"},
		{http.MethodPut, "/api/programs/1"},
		{http.MethodDelete, "/api/programs/1"},
	} {
		rec := doJSON(t, router, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestProgramLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "a@x.com", "password123")

	// Create: visibility defaults to private, description to null.
	rec := doJSON(t, router, http.MethodPost, "/api/programs", token, map[string]any{
		"title": "sq",
		"code":  "repeat 4 [fd 10 rt 90]",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created program.Program
	decodeBody(t, rec, &created)
	assert.Equal(t, program.VisibilityPrivate, created.Visibility)
	assert.Nil(t, created.Description)

	// The public listing does not include it yet.
	rec = doJSON(t, router, http.MethodGet, "/api/programs?visibility=public", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing program.ListResponse
	decodeBody(t, rec, &listing)
	assert.Empty(t, listing.Data)
	assert.Equal(t, 0, listing.Meta.Total)

	// Publish it via partial update; other fields stay put.
	rec = doJSON(t, router, http.MethodPut, "/api/programs/1", token, map[string]any{
		"visibility": "public",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated program.Program
	decodeBody(t, rec, &updated)
	assert.Equal(t, program.VisibilityPublic, updated.Visibility)
	assert.Equal(t, "sq", updated.Title)

	rec = doJSON(t, router, http.MethodGet, "/api/programs?visibility=public", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &listing)
	require.Len(t, listing.Data, 1)
	assert.Equal(t, created.ID, listing.Data[0].ID)
	assert.Equal(t, 1, listing.Meta.Total)
	assert.Equal(t, 1, listing.Meta.LastPage)
	assert.Equal(t, 20, listing.Meta.PerPage)

	// Delete, then the id is gone.
	rec = doJSON(t, router, http.MethodDelete, "/api/programs/1", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/programs/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/programs/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProgramUpdateNullClearsDescription(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "a@x.com", "password123")

	rec := doJSON(t, router, http.MethodPost, "/api/programs", token, map[string]any{
		"title":       "sq",
		"code":        "repeat 4 [fd 10 rt 90]",
		"description": "draws a square",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPut, "/api/programs/1", token, json.RawMessage(`{"description":null}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated program.Program
	decodeBody(t, rec, &updated)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "sq", updated.Title)
}

func TestProgramValidationFailed(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "a@x.com", "password123")

	rec := doJSON(t, router, http.MethodPost, "/api/programs", token, map[string]any{
		"title":      "",
		"visibility": "secret",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")

	var resp struct {
		Fields map[string][]string `json:"fields"`
	}
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Fields, "title")
	assert.Contains(t, resp.Fields, "code")
	assert.Contains(t, resp.Fields, "visibility")
}

func TestProgramNotFoundAndBadID(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "a@x.com", "password123")

	rec := doJSON(t, router, http.MethodGet, "/api/programs/404", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")

	// A non-numeric id cannot name a program.
	rec = doJSON(t, router, http.MethodGet, "/api/programs/abc", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProgramListBadPaging(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "a@x.com", "password123")

	rec := doJSON(t, router, http.MethodGet, "/api/programs?page=0&limit=nope", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Fields map[string][]string `json:"fields"`
	}
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Fields, "page")
	assert.Contains(t, resp.Fields, "limit")
}
