package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Jorge-Marco5/go-api-template/internal/logger"
	"github.com/Jorge-Marco5/go-api-template/internal/response"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimitMessage is the fixed message returned to throttled clients.
const RateLimitMessage = "too many requests from this IP"

// RateLimitClient is the subset of redis operations the limiter needs,
// narrow so tests can substitute a stub.
type RateLimitClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimitConfig holds fixed-window limiter settings.
type RateLimitConfig struct {
	Client      RateLimitClient
	Window      time.Duration
	MaxRequests int
}

// RateLimit applies a fixed-window counter per client IP. The first
// request in a window creates the key with the window's TTL; once the
// counter passes the maximum, requests are rejected until the key
// expires. Redis failures fail open: the request proceeds.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}

	return func(c *gin.Context) {
		if cfg.Client == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := rateLimitKeyPrefix + c.ClientIP()

		count, err := cfg.Client.Incr(ctx, key).Result()
		if err != nil {
			logger.Get().Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			cfg.Client.Expire(ctx, key, cfg.Window)
		}

		if count > int64(cfg.MaxRequests) {
			response.Fail(c, http.StatusTooManyRequests, RateLimitMessage)
			c.Abort()
			return
		}

		c.Next()
	}
}
