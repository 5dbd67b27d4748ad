package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("bypassed in development", func(t *testing.T) {
		allowed, err := NewRateLimiter(nil, "development").Allow(context.Background(), "login", "ip:1", 1, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("nil redis in production errors", func(t *testing.T) {
		allowed, err := NewRateLimiter(nil, "production").Allow(context.Background(), "login", "ip:1", 1, time.Minute)
		assert.Error(t, err)
		assert.False(t, allowed)
	})

	t.Run("counts within window", func(t *testing.T) {
		mr, rdb := newMiniRedis(t)
		l := NewRateLimiter(rdb, "production")

		for i := 0; i < 2; i++ {
			allowed, err := l.Allow(context.Background(), "login", "ip:1", 2, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := l.Allow(context.Background(), "login", "ip:1", 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		mr.FastForward(2 * time.Minute)
		allowed, err = l.Allow(context.Background(), "login", "ip:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("counter always carries the window ttl", func(t *testing.T) {
		mr, rdb := newMiniRedis(t)
		l := NewRateLimiter(rdb, "production")

		_, err := l.Allow(context.Background(), "login", "ip:2", 5, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, time.Minute, mr.TTL("rl:login:ip:2"))

		_, err = l.Allow(context.Background(), "login", "ip:2", 5, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, time.Minute, mr.TTL("rl:login:ip:2"), "later hits must not extend the window")
	})

	t.Run("counter left without ttl expires again", func(t *testing.T) {
		mr, rdb := newMiniRedis(t)
		l := NewRateLimiter(rdb, "production")
		require.NoError(t, mr.Set("rl:login:ip:3", "9"))

		allowed, err := l.Allow(context.Background(), "login", "ip:3", 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, time.Minute, mr.TTL("rl:login:ip:3"))

		mr.FastForward(2 * time.Minute)
		allowed, err = l.Allow(context.Background(), "login", "ip:3", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestRateLimiter_Middleware(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("FailOpen with nil redis in production", func(t *testing.T) {
		app := fiber.New()
		app.Get("/test", NewRateLimiter(nil, "production").Limit("test", 1, time.Minute), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("FailClosed with nil redis in production", func(t *testing.T) {
		app := fiber.New()
		app.Get("/sensitive", NewRateLimiter(nil, "production").LimitWithPolicy("sensitive", 1, time.Minute, FailClosed), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sensitive", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("rejects over limit", func(t *testing.T) {
		_, rdb := newMiniRedis(t)
		app := fiber.New()
		app.Get("/limited", NewRateLimiter(rdb, "production").Limit("limited", 1, time.Minute), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
