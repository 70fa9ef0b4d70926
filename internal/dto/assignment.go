package dto

import "time"

// ── 作业模块 DTO ──

// CreateAssignmentRequest 创建作业请求
// dueDate 接受 RFC3339 或 YYYY-MM-DD
type CreateAssignmentRequest struct {
	CourseID    string `json:"course"      binding:"required,uuid"`
	Title       string `json:"title"       binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=1000"`
	DueDate     string `json:"due_date"    binding:"required"`
	Priority    string `json:"priority"    binding:"omitempty,priority"`
}

// UpdateAssignmentRequest 管理者编辑作业，字段为 nil 表示不修改
type UpdateAssignmentRequest struct {
	Title       *string `json:"title"       binding:"omitempty,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"    binding:"omitempty,priority"`
	Status      *string `json:"status"      binding:"omitempty,assignment_status"`
}

// SubmitAssignmentRequest 学生提交作业
type SubmitAssignmentRequest struct {
	FileURL string `json:"file_url" binding:"max=2048"`
	Comment string `json:"comment"  binding:"max=1000"`
}

// AssignmentListRequest 作业列表筛选参数
type AssignmentListRequest struct {
	CourseID string `form:"course"   binding:"omitempty,uuid"`
	Status   string `form:"status"   binding:"omitempty,assignment_status"`
	DueDate  string `form:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

// AssignmentResponse 作业响应
type AssignmentResponse struct {
	ID          string               `json:"id"`
	Course      CourseBrief          `json:"course"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	DueDate     time.Time            `json:"due_date"`
	Priority    string               `json:"priority"`
	Status      string               `json:"status"`
	Submissions []SubmissionResponse `json:"submissions"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// SubmissionResponse 提交记录
type SubmissionResponse struct {
	User        UserBrief `json:"user"`
	FileURL     string    `json:"file_url"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submitted_at"`
}
