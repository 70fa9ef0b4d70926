package errors

import (
	"errors"
	"net/http"
)

// Kind 业务错误分类，决定 HTTP 状态码
type Kind int

const (
	KindValidation     Kind = iota + 1 // 参数缺失或格式错误
	KindAuthentication                 // 身份令牌缺失、无效或过期
	KindAuthorization                  // 权限判定未通过
	KindNotFound                       // 引用的实体不存在
	KindConflict                       // 唯一性冲突或状态冲突
	KindInternal                       // 存储不可用等内部错误
	KindRateLimited                    // 超出接口限流额度
	KindTooLarge                       // 请求体超出上限
)

// HTTPStatus 错误分类到 HTTP 状态码的映射
// 冲突类按接口约定返回 400（课程代码重复、重复选课、已评分作业再提交）
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindTooLarge:
		return "too_large"
	default:
		return "internal"
	}
}

// AppError 带业务码的错误
// 以包级变量声明为哨兵错误，errors.Is 按业务码比较
type AppError struct {
	Kind    Kind
	Code    int
	Message string
}

// New 创建业务错误
func New(kind Kind, code int, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func (e *AppError) Error() string { return e.Message }

// Is 业务码相同即视为同一错误
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// HTTPStatus 返回该错误对应的 HTTP 状态码
func (e *AppError) HTTPStatus() int { return e.Kind.HTTPStatus() }

// As 从错误链中提取 *AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ── 通用错误 ──

var (
	ErrValidation   = New(KindValidation, 10001, "参数校验失败")
	ErrUnauthorized = New(KindAuthentication, 10002, "未认证")
	ErrForbidden    = New(KindAuthorization, 10003, "无权限访问")
	ErrRateLimited  = New(KindRateLimited, 10004, "请求过于频繁，请稍后再试")
	ErrBodyTooLarge = New(KindTooLarge, 10005, "请求体过大")
	ErrInternal     = New(KindInternal, 50000, "服务器内部错误")
)
