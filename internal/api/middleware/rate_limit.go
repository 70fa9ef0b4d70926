package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgerrors "assignment-tracker/backend/pkg/errors"
	"assignment-tracker/backend/pkg/response"
)

// Limiter 滑动窗口计数，*redis.Client 实现该接口（nil 客户端恒放行）
type Limiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按调用方限流
// 已认证请求按 user_id 计数（须挂在 JWTAuth 之后），匿名请求按客户端 IP 计数；
// scope 区分计数桶，limit <= 0 不限流，计数失败时降级放行
func RateLimit(limiter Limiter, scope string, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(window.Round(time.Second) / time.Second))

	return func(c *gin.Context) {
		if limit <= 0 || limiter == nil {
			c.Next()
			return
		}

		key := rateLimitKey(c, scope)
		allowed, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流计数失败，降级放行", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", retryAfter)
			response.FromError(c, pkgerrors.ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}

func rateLimitKey(c *gin.Context, scope string) string {
	if uid := c.GetString("user_id"); uid != "" {
		return fmt.Sprintf("rate_limit:%s:user:%s", scope, uid)
	}
	return fmt.Sprintf("rate_limit:%s:ip:%s", scope, c.ClientIP())
}
