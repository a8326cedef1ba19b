package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// stubLimiterClient counts in memory instead of redis.
type stubLimiterClient struct {
	counts  map[string]int64
	failing bool
	expired []string
}

func newStubLimiterClient() *stubLimiterClient {
	return &stubLimiterClient{counts: map[string]int64{}}
}

func (s *stubLimiterClient) Incr(ctx context.Context, key string) *redis.IntCmd {
	if s.failing {
		cmd := redis.NewIntCmd(ctx)
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	s.counts[key]++
	return redis.NewIntResult(s.counts[key], nil)
}

func (s *stubLimiterClient) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	s.expired = append(s.expired, key)
	return redis.NewBoolResult(true, nil)
}

func setupLimitedRouter(cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(cfg))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	t.Run("allows up to the maximum then rejects", func(t *testing.T) {
		client := newStubLimiterClient()
		r := setupLimitedRouter(RateLimitConfig{Client: client, Window: time.Minute, MaxRequests: 3})

		for i := 0; i < 3; i++ {
			w := hit(r)
			assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		}

		w := hit(r)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), RateLimitMessage)
	})

	t.Run("sets the window TTL on the first request only", func(t *testing.T) {
		client := newStubLimiterClient()
		r := setupLimitedRouter(RateLimitConfig{Client: client, Window: time.Minute, MaxRequests: 3})

		hit(r)
		hit(r)
		assert.Len(t, client.expired, 1)
	})

	t.Run("fails open when redis is down", func(t *testing.T) {
		client := newStubLimiterClient()
		client.failing = true
		r := setupLimitedRouter(RateLimitConfig{Client: client, Window: time.Minute, MaxRequests: 1})

		for i := 0; i < 5; i++ {
			w := hit(r)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("nil client disables limiting", func(t *testing.T) {
		r := setupLimitedRouter(RateLimitConfig{MaxRequests: 1})

		for i := 0; i < 5; i++ {
			w := hit(r)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}
