package middleware

import (
	"fmt"
	"time"

	"github.com/folio-space/folio/internal/auth"
	"github.com/folio-space/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitWindow = time.Second

// RateLimit enforces a fixed one-second window of max requests per client IP
// for unauthenticated callers. A nil client or max <= 0 disables it.
// onLimited, when set, runs in the background for every rejected request.
func RateLimit(rdb *redis.Client, max int, onLimited func(ip, path string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || max <= 0 || auth.FromContext(c).Authenticated() {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("folio:rate_limit:%s:%d", ip, time.Now().Unix())

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.PExpire(ctx, key, rateLimitWindow+time.Second)
		}

		if count > int64(max) {
			if onLimited != nil {
				go onLimited(ip, c.Request.URL.Path)
			}
			c.Header("Retry-After", "1")
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
