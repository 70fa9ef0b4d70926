package dto

import "time"

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Title       string `json:"title"       binding:"required,min=3,max=100"`
	Code        string `json:"code"        binding:"required,min=2,max=20,course_code"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateCourseRequest 编辑课程请求，字段为 nil 表示不修改
type UpdateCourseRequest struct {
	Title       *string `json:"title"       binding:"omitempty,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// CourseResponse 课程响应
type CourseResponse struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Owner       UserBrief   `json:"owner"`
	Members     []UserBrief `json:"members"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CourseBrief 关联实体中的课程摘要
type CourseBrief struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Code  string `json:"code"`
}

// CourseDetailResponse GET /courses/:id 响应：课程及其作业（按截止时间升序）
type CourseDetailResponse struct {
	Course      CourseResponse       `json:"course"`
	Assignments []AssignmentResponse `json:"assignments"`
}
