package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/studyaid/backend/internal/config"
	"github.com/studyaid/backend/internal/flashcards"
	"github.com/studyaid/backend/internal/middleware"
	"github.com/studyaid/backend/internal/practice"
	"github.com/studyaid/backend/internal/quizzes"
)

func testHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	manager := practice.NewManager(0, nil)
	t.Cleanup(manager.CloseAll)
	tokens := middleware.NewSessionTokens(cfg.Token.Secret, cfg.Token.TTL)

	return newRouter(cfg,
		flashcards.NewHandler(flashcards.NewService(nil)),
		quizzes.NewHandler(quizzes.NewService(nil)),
		practice.NewHandler(practice.NewService(nil, nil, nil, manager, cfg.Practice), tokens),
		tokens,
		middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:      8080,
		Token:     config.TokenConfig{Secret: "secret", TTL: time.Hour},
		RateLimit: config.RateLimitConfig{RPS: 100, Burst: 100},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}},
	}
}

func TestHealth(t *testing.T) {
	h := testHandler(t, testConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSessionRoutesNeedToken(t *testing.T) {
	h := testHandler(t, testConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/practice/abc/reveal", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestQuizRoutesMounted(t *testing.T) {
	h := testHandler(t, testConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/quizzes", strings.NewReader(`{"title":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSAllowedOrigin(t *testing.T) {
	h := testHandler(t, testConfig())

	req := httptest.NewRequest("OPTIONS", "/api/v1/flashcards", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPIRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RPS: 0.001, Burst: 1}
	h := testHandler(t, cfg)

	call := func() int {
		req := httptest.NewRequest("POST", "/api/v1/practice/abc/reveal", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call())
	assert.Equal(t, http.StatusTooManyRequests, call())
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()

	serve, _, err := root.Find([]string{"serve"})
	assert.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())

	down, _, err := root.Find([]string{"migrate", "down"})
	assert.NoError(t, err)
	assert.NotNil(t, down.Flags().Lookup("steps"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}
