package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// corsHeaders 对允许的来源固定回写的响应头
// 导出文件名在 Content-Disposition 中，限流时前端需要读取 Retry-After
var corsHeaders = map[string]string{
	"Access-Control-Allow-Credentials": "true",
	"Access-Control-Allow-Headers":     "Content-Type, Authorization, " + requestIDHeader,
	"Access-Control-Allow-Methods":     "GET, POST, PUT, DELETE, OPTIONS",
	"Access-Control-Expose-Headers":    "Content-Disposition, Retry-After, " + requestIDHeader,
	"Access-Control-Max-Age":           "86400",
}

// CORS 跨域中间件，来源按配置精确匹配（忽略末尾斜杠）
// 与 websocket 握手的 Origin 校验使用同一份配置
func CORS(allowOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowOrigins))
	for _, o := range allowOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok && origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			for k, v := range corsHeaders {
				h.Set(k, v)
			}
		}

		// 预检请求不进入业务路由；未允许的来源拿不到跨域头，由浏览器拦截
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
