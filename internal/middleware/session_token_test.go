package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokensRoundTrip(t *testing.T) {
	tokens := NewSessionTokens("secret", time.Hour)

	raw, err := tokens.Issue("session-1")
	require.NoError(t, err)

	id, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "session-1", id)
}

func TestSessionTokensRejectsForeignSecret(t *testing.T) {
	raw, err := NewSessionTokens("one", time.Hour).Issue("session-1")
	require.NoError(t, err)

	_, err = NewSessionTokens("two", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokensExpire(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewSessionTokens("secret", time.Minute)
	tokens.now = func() time.Time { return now }

	raw, err := tokens.Issue("session-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequire(t *testing.T) {
	tokens := NewSessionTokens("secret", time.Hour)
	good, err := tokens.Issue("abc")
	require.NoError(t, err)
	other, err := tokens.Issue("xyz")
	require.NoError(t, err)

	r := mux.NewRouter()
	sub := r.PathPrefix("/practice/{id}").Subrouter()
	sub.Use(tokens.Require("id"))
	sub.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		id, ok := SessionIDFromContext(r.Context())
		assert.True(t, ok)
		w.Write([]byte(id))
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + good, http.StatusUnauthorized},
		{"malformed", "Bearer not-a-token", http.StatusUnauthorized},
		{"other session", "Bearer " + other, http.StatusForbidden},
		{"valid", "Bearer " + good, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/practice/abc", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "abc", rec.Body.String())
			}
		})
	}
}
