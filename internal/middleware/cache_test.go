package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kzaleska/cinema-ticketing/internal/config"
)

func TestPackUnpackResponse(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}, "X-Custom": {"a", "b"}}
	body := []byte(`{"id":1}`)

	packed, err := packResponse(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := unpackResponse(packed)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, body, gotBody)
}

func TestUnpackResponse_Corrupt(t *testing.T) {
	_, _, _, ok := unpackResponse([]byte{1, 2, 3})
	assert.False(t, ok, "short payloads must read as a miss")

	packed, err := packResponse(http.StatusOK, http.Header{}, []byte("x"))
	require.NoError(t, err)
	_, _, _, ok = unpackResponse(packed[:9])
	assert.False(t, ok, "truncated payloads must read as a miss")
}

func newCacheTestContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/movies")
	return c
}

func TestCacheKey(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	k1 := cacheKey(cfg, newCacheTestContext("/v1/movies?page=1"))
	k2 := cacheKey(cfg, newCacheTestContext("/v1/movies?page=1"))
	k3 := cacheKey(cfg, newCacheTestContext("/v1/movies?page=2"))

	assert.Equal(t, k1, k2, "same request must map to the same key")
	assert.NotEqual(t, k1, k3, "query must contribute to the key")
	assert.True(t, len(k1) > len("cache:"), "prefix stays in clear for invalidation")
	assert.Contains(t, k1, "cache:")

	routeOnly := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
	assert.Equal(t,
		cacheKey(routeOnly, newCacheTestContext("/v1/movies?page=1")),
		cacheKey(routeOnly, newCacheTestContext("/v1/movies?page=2")),
		"route strategy ignores the query")
}

func TestBodyRecorderLimit(t *testing.T) {
	rec := &bodyRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 4}
	_, err := rec.Write([]byte("123456"))
	require.NoError(t, err)

	assert.Equal(t, "1234", rec.buf.String())
	assert.False(t, rec.cacheable(), "responses over the limit are not cached")

	small := &bodyRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 4}
	_, err = small.Write([]byte("12"))
	require.NoError(t, err)
	assert.True(t, small.cacheable())
}

func TestBodyRecorderStatus(t *testing.T) {
	rec := &bodyRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	rec.WriteHeader(http.StatusNotFound)
	assert.False(t, rec.cacheable(), "only 200 responses are cached")
}

func TestCacheMiddleware_PassThroughWithoutRedis(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}
	for name, mw := range map[string]echo.MiddlewareFunc{
		"cache":       NewRedisCache(cfg, nil),
		"invalidator": NewCacheInvalidator(cfg, nil),
	} {
		t.Run(name, func(t *testing.T) {
			called := false
			h := mw(func(c echo.Context) error {
				called = true
				return c.String(http.StatusOK, "ok")
			})
			c := newCacheTestContext("/v1/movies")
			require.NoError(t, h(c))
			assert.True(t, called)
			assert.Empty(t, c.Response().Header().Get("X-Cache"))
		})
	}
}
