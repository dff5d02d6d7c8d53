package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth_RejectsMismatch(t *testing.T) {
	handler := BearerAuth("secret")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/brute/attack/add", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuth_AcceptsMatch(t *testing.T) {
	handler := BearerAuth("secret")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/brute/attack/add", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS_SetsHeaders(t *testing.T) {
	handler := CORS(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/brute/stats/attack", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MaxCalls: 2, Window: time.Minute})

	assert.True(t, rl.Allow("203.0.113.7"))
	assert.True(t, rl.Allow("203.0.113.7"))
	assert.False(t, rl.Allow("203.0.113.7"))
}

func TestRateLimiter_TracksKeysIndependently(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MaxCalls: 1, Window: time.Minute})

	assert.True(t, rl.Allow("203.0.113.7"))
	assert.True(t, rl.Allow("198.51.100.2"))
}
