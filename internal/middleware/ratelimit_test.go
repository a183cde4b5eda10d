package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/config"
)

func rateLimitConfigForTest() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       60,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
}

func TestTokenBucketLimits(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := rateLimitConfigForTest()
	cfg.Capacity = 2

	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Real-IP", "203.0.113.7")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do().Code)
	rec := do()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_requests")
}

func TestTokenBucketFailsOpenWithoutRedis(t *testing.T) {
	cfg := rateLimitConfigForTest()
	cfg.Capacity = 1

	e := echo.New()
	e.Use(NewTokenBucket(cfg, nil))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestTokenBucketSeparateKeysPerIP(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := rateLimitConfigForTest()
	cfg.Capacity = 1

	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Real-IP", ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.7"))
	// a different client still has a full bucket
	assert.Equal(t, http.StatusOK, do("198.51.100.9"))
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	do := func(role interface{}) int {
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		h := RequireRole("MANAGER", "ADMIN")(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
		if err := h(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("MANAGER"))
	assert.Equal(t, http.StatusOK, do("ADMIN"))
	assert.Equal(t, http.StatusForbidden, do("CHEF"))
	assert.Equal(t, http.StatusForbidden, do(nil))
	assert.Equal(t, http.StatusForbidden, do(42))
}
