package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRateLimiter shares a Redis client with the middleware, normally the
// same connection the durable store uses. With a nil client the limiter is
// fail-open.
func InitRateLimiter(client *redis.Client) {
	redisClient = client
}

// RateLimit is a fixed-window per-IP limiter over Redis INCR/EXPIRE. Redis
// trouble never blocks a connection attempt.
func RateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || maxRequests <= 0 {
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		ctx := context.Background()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		if val > int64(maxRequests) {
			rlBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		rlRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
