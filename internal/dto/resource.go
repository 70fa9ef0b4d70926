package dto

import "time"

// ── 课程资料 DTO ──

// CreateResourceRequest 上传资料请求，type 为空时取 file
type CreateResourceRequest struct {
	Title   string `json:"title"    binding:"required,max=100"`
	FileURL string `json:"file_url" binding:"required,max=2048"`
	Type    string `json:"type"`
}

// ResourceResponse 资料响应
type ResourceResponse struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	Title      string    `json:"title"`
	FileURL    string    `json:"file_url"`
	Type       string    `json:"type"`
	UploadedBy UserBrief `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
