package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"assignment-tracker/backend/internal/api/middleware"
	pkgerrors "assignment-tracker/backend/pkg/errors"
	"assignment-tracker/backend/pkg/response"
)

// respondError 统一错误出口：业务错误按分类输出，其余记录日志后返回 500
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if appErr, ok := pkgerrors.As(err); ok {
		response.FromError(c, appErr)
		return
	}

	logger.Error("请求处理失败",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("request_id", middleware.RequestIDFrom(c)),
		zap.Error(err),
	)
	response.InternalError(c)
}

// bindError 请求体或查询参数校验失败
// 未声明长度的请求体在读取时超出 BodyLimit 上限，同样按 413 返回
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.FromError(c, pkgerrors.ErrBodyTooLarge)
		return
	}
	response.ErrorWithDetails(c, pkgerrors.ErrValidation.HTTPStatus(), pkgerrors.ErrValidation.Code, pkgerrors.ErrValidation.Message, err.Error())
}
