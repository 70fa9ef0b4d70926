package middleware

import (
	"github.com/gin-gonic/gin"
)

// apiCSP 接口只返回 JSON、Excel 附件和 WebSocket 帧，不需要加载任何子资源
const apiCSP = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders 安全响应头
// 响应含课程成员与提交记录，禁止中间缓存
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", apiCSP)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cache-Control", "no-store")

		c.Next()
	}
}
