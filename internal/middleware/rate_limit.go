package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamforge/backend/internal/constants"
	apperrors "github.com/teamforge/backend/internal/errors"
	"github.com/teamforge/backend/pkg/logger"
	"github.com/teamforge/backend/pkg/redis"
	"go.uber.org/zap"
)

// RateLimitStore counts hits per client key within a window
type RateLimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisRateLimitStore shares the counter across instances
type RedisRateLimitStore struct {
	client *redis.Client
}

func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

func (s *RedisRateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	return s.client.Hit(ctx, "ratelimit:"+key, window)
}

// MemoryRateLimitStore is the single-instance fallback when redis is
// disabled
type MemoryRateLimitStore struct {
	hits map[string][]time.Time
	mu   sync.Mutex
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{hits: make(map[string][]time.Time)}
}

func (s *MemoryRateLimitStore) Hit(_ context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var valid []time.Time
	for _, t := range s.hits[key] {
		if now.Sub(t) <= window {
			valid = append(valid, t)
		}
	}
	valid = append(valid, now)
	s.hits[key] = valid

	return int64(len(valid)), nil
}

// RateLimit limits requests per client IP. Applied to the auth endpoints
// only; the limiter fails open on store errors so a redis outage cannot
// lock everyone out.
func RateLimit(store RateLimitStore, maxRequest int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		count, err := store.Hit(c.Request.Context(), ip, window)
		if err != nil {
			logger.GetLogger().Warn("Rate limit store unavailable",
				zap.String("client_ip", ip),
				zap.Error(err))
			c.Next()
			return
		}

		if count > int64(maxRequest) {
			logger.GetLogger().Warn("Rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int64("current_requests", count),
				zap.Int("max_requests", maxRequest),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.JSON(http.StatusTooManyRequests,
				constants.BuildErrorResponse(apperrors.ErrTooManyRequests.Message, nil))
			c.Abort()
			return
		}

		remaining := int64(maxRequest) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequest))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		c.Next()
	}
}
