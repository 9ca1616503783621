package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/yeisme/filevault/pkg/configs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	tokens map[string]string
	err    error
}

func (s stubVerifier) Verify(_ context.Context, token string) (string, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}

	owner, ok := s.tokens[token]

	return owner, ok, nil
}

func serve(engine *gin.Engine, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	return w
}

func echoOwner(c *gin.Context) {
	c.String(http.StatusOK, OwnerID(c))
}

func TestLimiterSetBurstAndDelay(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	set := newLimiterSet(1, 2, time.Minute)
	set.now = func() time.Time { return now }

	ok, _ := set.allow("a")
	assert.True(t, ok)
	ok, _ = set.allow("a")
	assert.True(t, ok)

	ok, wait := set.allow("a")
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	ok, _ = set.allow("b")
	assert.True(t, ok, "keys have separate buckets")

	now = now.Add(time.Second)
	ok, _ = set.allow("a")
	assert.True(t, ok, "token refilled")
}

func TestLimiterSetSweepsIdleEntries(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	set := newLimiterSet(10, 10, time.Minute)
	set.now = func() time.Time { return now }

	set.allow("old")
	now = now.Add(2 * time.Minute)
	set.allow("fresh")
	require.Equal(t, 2, set.size())

	set.sweep(now)
	assert.Equal(t, 1, set.size())

	_, ok := set.entries["fresh"]
	assert.True(t, ok)
}

func TestRateLimitMiddlewareByHeader(t *testing.T) {
	engine := gin.New()
	engine.Use(RateLimitMiddleware(configs.RateLimitConfig{
		Enabled: true,
		RPS:     1,
		Burst:   1,
		Key:     "header:X-Token",
	}))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	alice := map[string]string{"X-Token": "alice"}

	assert.Equal(t, http.StatusNoContent, serve(engine, "/ping", alice).Code)

	w := serve(engine, "/ping", alice)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())

	assert.Equal(t, http.StatusNoContent, serve(engine, "/ping", map[string]string{"X-Token": "bob"}).Code)
	assert.Equal(t, http.StatusNoContent, serve(engine, "/ping", nil).Code, "falls back to client IP")
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	engine := gin.New()
	engine.Use(RateLimitMiddleware(configs.RateLimitConfig{Enabled: false, RPS: 1, Burst: 1}))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for range 5 {
		assert.Equal(t, http.StatusNoContent, serve(engine, "/ping", nil).Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	conf := configs.AuthConfig{Header: "X-Token", SkipPaths: []string{"/api/v1/health"}}
	verifier := stubVerifier{tokens: map[string]string{"t1": "user-1"}}

	engine := gin.New()
	engine.Use(AuthMiddleware(verifier, conf))
	engine.GET("/api/v1/files", echoOwner)
	engine.GET("/api/v1/health/db", echoOwner)

	w := serve(engine, "/api/v1/files", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(engine, "/api/v1/files", map[string]string{"X-Token": "bad"}).Code)

	w = serve(engine, "/api/v1/files", map[string]string{"X-Token": "t1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	w = serve(engine, "/api/v1/health/db", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestAuthMiddlewareStoreFailure(t *testing.T) {
	broken := stubVerifier{err: errors.New("kv down")}
	conf := configs.AuthConfig{Header: "X-Token"}

	required := gin.New()
	required.Use(AuthMiddleware(broken, conf))
	required.GET("/x", echoOwner)

	w := serve(required, "/x", map[string]string{"X-Token": "t1"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())

	optional := gin.New()
	optional.Use(OptionalAuthMiddleware(broken, conf))
	optional.GET("/x", echoOwner)

	w = serve(optional, "/x", map[string]string{"X-Token": "t1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestOptionalAuthMiddlewareDefaultHeader(t *testing.T) {
	engine := gin.New()
	engine.Use(OptionalAuthMiddleware(stubVerifier{tokens: map[string]string{"t1": "user-1"}}, configs.AuthConfig{}))
	engine.GET("/x", echoOwner)

	assert.Equal(t, "user-1", serve(engine, "/x", map[string]string{configs.DefaultAuthHeader: "t1"}).Body.String())
	assert.Empty(t, serve(engine, "/x", nil).Body.String())
}

func TestTracingMiddlewareSetsTraceHeader(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	engine := gin.New()
	engine.Use(TracingMiddleware())
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(engine, "/x", map[string]string{
		"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", w.Header().Get(HeaderTraceID))
}
