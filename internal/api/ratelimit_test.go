package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedHandler(t *testing.T, perMinute int) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	limiter := newRateLimiter(client, perMinute)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return limiter.Middleware(inner), mr
}

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	handler, _ := newLimitedHandler(t, 3)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/access-codes/validate", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	handler, _ := newLimitedHandler(t, 2)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/access-codes/validate", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Contains(t, last.Body.String(), "Too many attempts")
}

func TestRateLimiterIsPerClient(t *testing.T) {
	handler, _ := newLimitedHandler(t, 1)

	first := httptest.NewRequest(http.MethodPost, "/access-codes/validate", nil)
	first.RemoteAddr = "203.0.113.7:51000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	// A different IP gets its own window.
	second := httptest.NewRequest(http.MethodPost, "/access-codes/validate", nil)
	second.RemoteAddr = "198.51.100.9:42000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterFailsOpenWhenRedisDown(t *testing.T) {
	handler, mr := newLimitedHandler(t, 1)
	mr.Close()

	req := httptest.NewRequest(http.MethodPost, "/access-codes/validate", nil)
	req.RemoteAddr = "203.0.113.7:51000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Redis outage must not lock visitors out of the site.
	assert.Equal(t, http.StatusOK, rec.Code)
}
