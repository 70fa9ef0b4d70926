// Package policy 集中课程与作业的访问权限判定。
//
// 所有判定均为纯函数：不访问存储、不产生副作用。调用方负责把 false
// 转换为授权错误；这里只在引用缺失（未加载课程、用户为空）时返回错误。
package policy

import (
	"errors"

	"assignment-tracker/backend/internal/model"
)

// ErrMissingReference 判定所需的关联未加载
var ErrMissingReference = errors.New("权限判定缺少必要的关联数据")

// Evaluator 权限判定接口，业务层只依赖此抽象
type Evaluator interface {
	CanAccessCourse(user *model.User, course *model.Course) (bool, error)
	CanManageCourse(user *model.User, course *model.Course) (bool, error)
	CanManageAssignment(user *model.User, assignment *model.Assignment) (bool, error)
	CanSubmit(user *model.User, assignment *model.Assignment) (bool, error)
}

// Default 默认判定规则
var Default Evaluator = rules{}

type rules struct{}

func (rules) CanAccessCourse(user *model.User, course *model.Course) (bool, error) {
	return CanAccessCourse(user, course)
}

func (rules) CanManageCourse(user *model.User, course *model.Course) (bool, error) {
	return CanManageCourse(user, course)
}

func (rules) CanManageAssignment(user *model.User, assignment *model.Assignment) (bool, error) {
	return CanManageAssignment(user, assignment)
}

func (rules) CanSubmit(user *model.User, assignment *model.Assignment) (bool, error) {
	return CanSubmit(user, assignment)
}

// CanAccessCourse 课程所有者或成员可访问
func CanAccessCourse(user *model.User, course *model.Course) (bool, error) {
	if err := checkRefs(user, course); err != nil {
		return false, err
	}
	if user.UserID == course.OwnerID {
		return true, nil
	}
	return course.HasMember(user.UserID), nil
}

// CanManageCourse 课程所有者或任意教师可管理
func CanManageCourse(user *model.User, course *model.Course) (bool, error) {
	if err := checkRefs(user, course); err != nil {
		return false, err
	}
	return user.UserID == course.OwnerID || user.Role == model.RoleInstructor, nil
}

// CanManageAssignment 按作业所属课程判定管理权
func CanManageAssignment(user *model.User, assignment *model.Assignment) (bool, error) {
	if assignment == nil {
		return false, ErrMissingReference
	}
	return CanManageCourse(user, assignment.Course)
}

// CanSubmit 能访问作业所属课程即可提交
func CanSubmit(user *model.User, assignment *model.Assignment) (bool, error) {
	if assignment == nil {
		return false, ErrMissingReference
	}
	return CanAccessCourse(user, assignment.Course)
}

func checkRefs(user *model.User, course *model.Course) error {
	if user == nil || user.UserID == "" || course == nil || course.OwnerID == "" {
		return ErrMissingReference
	}
	return nil
}
