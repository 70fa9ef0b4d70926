package dto

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"assignment-tracker/backend/internal/model"
	"assignment-tracker/backend/internal/workflow"
)

var courseCodePattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// RegisterValidators 向 gin 的校验引擎注册自定义规则
func RegisterValidators(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"course_code": func(fl validator.FieldLevel) bool {
			return courseCodePattern.MatchString(fl.Field().String())
		},
		"priority": func(fl validator.FieldLevel) bool {
			return model.ValidPriority(fl.Field().String())
		},
		"assignment_status": func(fl validator.FieldLevel) bool {
			return workflow.ValidStatus(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeCourseCode 课程代码统一为大写，唯一性按大写比较
func NormalizeCourseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ErrInvalidDate 日期格式无法识别
var ErrInvalidDate = errors.New("日期格式无效")

// ParseDueDate 接受 RFC3339 时间或 YYYY-MM-DD（按 UTC 零点）
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}
