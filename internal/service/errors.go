package service

import (
	"errors"

	"gorm.io/gorm"

	pkgerrors "assignment-tracker/backend/pkg/errors"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = pkgerrors.New(pkgerrors.KindAuthentication, 11001, "邮箱或密码错误")
	ErrEmailExists        = pkgerrors.New(pkgerrors.KindConflict, 11002, "该邮箱已注册")
	ErrUserNotFound       = pkgerrors.New(pkgerrors.KindNotFound, 11003, "用户不存在")
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound     = pkgerrors.New(pkgerrors.KindNotFound, 20001, "课程不存在")
	ErrCourseCodeExists   = pkgerrors.New(pkgerrors.KindConflict, 20002, "课程代码已存在")
	ErrCourseAccessDenied = pkgerrors.New(pkgerrors.KindAuthorization, 20003, "无权访问该课程")
	ErrCourseManageDenied = pkgerrors.New(pkgerrors.KindAuthorization, 20004, "只有课程所有者或教师可以管理课程")
	ErrAlreadyEnrolled    = pkgerrors.New(pkgerrors.KindConflict, 20005, "已加入该课程")
	ErrOwnerCannotLeave   = pkgerrors.New(pkgerrors.KindValidation, 20006, "课程所有者不能退出课程")
)

// ── 作业模块业务错误 ──
// 21004~21009 中的状态机错误定义在 workflow 包

var (
	ErrAssignmentNotFound     = pkgerrors.New(pkgerrors.KindNotFound, 21001, "作业不存在")
	ErrAssignmentAccessDenied = pkgerrors.New(pkgerrors.KindAuthorization, 21002, "无权访问该作业")
	ErrAssignmentManageDenied = pkgerrors.New(pkgerrors.KindAuthorization, 21003, "只有课程所有者或教师可以管理作业")
	ErrInvalidDueDate         = pkgerrors.New(pkgerrors.KindValidation, 21008, "截止日期无效或早于今天")
	ErrExportGenerateFail     = pkgerrors.New(pkgerrors.KindInternal, 21010, "生成 Excel 文件失败")
)

// ── 课程资料业务错误 ──

var (
	ErrResourceManageDenied = pkgerrors.New(pkgerrors.KindAuthorization, 22001, "只有课程所有者或教师可以上传资料")
	ErrInvalidResourceType  = pkgerrors.New(pkgerrors.KindValidation, 22002, "资料类型只能是 file 或 link")
)

// notFound 将记录不存在转换为对应的业务错误，其余错误原样返回
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// isBusinessErr 业务错误无需记录错误日志
func isBusinessErr(err error) bool {
	_, ok := pkgerrors.As(err)
	return ok
}
