// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimit allows limit requests per client IP and minute, counted in Redis.
// When Redis is unavailable requests are let through.
func RateLimit(redisClient *redis.Client, keyPrefix string, limit int, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		key := keyPrefix + ":rate_limit:" + c.ClientIP()

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		// INCR first so concurrent requests cannot both pass at limit-1
		n, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			log.WithError(err).Warn("Rate limiter unavailable")
			c.Next()
			return
		}
		if n == 1 {
			redisClient.Expire(ctx, key, time.Minute)
		}

		count := int(n)
		ttl := redisClient.TTL(ctx, key).Val()
		if ttl <= 0 {
			ttl = time.Minute
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(limit-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if count > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(ttl.Seconds()),
			})
			return
		}

		c.Next()
	}
}
