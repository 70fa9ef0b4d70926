package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "assignment-tracker/backend/pkg/errors"
	"assignment-tracker/backend/pkg/response"
)

// BodyLimit 请求体大小限制
// 声明了 Content-Length 且超限的请求直接返回 413；
// 未声明长度的请求体由 MaxBytesReader 截断，处理器绑定时识别 *http.MaxBytesError 返回同一错误
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			response.FromError(c, pkgerrors.ErrBodyTooLarge)
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
