package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newstech/newstech/internal/config"
	"github.com/newstech/newstech/internal/ctxkeys"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	handler := rl.Limit(false)(ok)
	call := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec.Code
	}

	for i := range 2 {
		require.Equal(t, http.StatusOK, call("10.0.0.1:5000"), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:5001"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000"), "other ip")

	now = now.Add(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000"), "after window")
}

func TestClientIPTrustsProxyOnlyWhenConfigured(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "192.0.2.1", clientIP(req, false))
	assert.Equal(t, "203.0.113.9", clientIP(req, true))
}

func TestRequestIDAssignsAndPropagates(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err, "generated id %q", seen)
	assert.Equal(t, seen, rec.Header().Get(requestIDHeader))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, incoming)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, incoming, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "<script>")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "<script>", seen)
}

func TestSecurityHeadersAndConfig(t *testing.T) {
	cfg := &config.Config{AppEnv: "production", JWTSecret: "secret"}
	var ctxCfg *config.Config
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxCfg = ctxkeys.Config(r.Context())
	}), Config(cfg), SecurityHeaders)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, ctxCfg)
	assert.Empty(t, ctxCfg.JWTSecret)
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Strict-Transport-Security"} {
		assert.NotEmpty(t, rec.Header().Get(h), h)
	}
}

func TestCORSAllowsFrontendOnly(t *testing.T) {
	handler := CORS("http://localhost:5174")(http.HandlerFunc(ok))

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, "http://localhost:5174", preflight("http://localhost:5174").Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, preflight("https://evil.example").Header().Get("Access-Control-Allow-Origin"))
}
