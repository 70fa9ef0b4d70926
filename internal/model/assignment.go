package model

import "time"

// 作业状态：Pending → Submitted → Graded（终态）
const (
	StatusPending   = "Pending"
	StatusSubmitted = "Submitted"
	StatusGraded    = "Graded"
)

// 作业优先级
const (
	PriorityLow    = "Low"
	PriorityNormal = "Normal"
	PriorityHigh   = "High"
)

// ValidPriority 判断优先级是否合法
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// Assignment 作业表 — 对应 assignments
type Assignment struct {
	AssignmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	CourseID     string    `gorm:"type:uuid;not null;index"                       json:"course_id"`
	Title        string    `gorm:"type:varchar(100);not null"                     json:"title"`
	Description  string    `gorm:"type:text;not null;default:''"                  json:"description"`
	DueDate      time.Time `gorm:"not null"                                       json:"due_date"`
	Priority     string    `gorm:"type:varchar(10);not null;default:'Normal'"     json:"priority"`
	Status       string    `gorm:"type:varchar(10);not null;default:'Pending'"    json:"status"`
	BaseModel

	// 关联
	Course      *Course      `gorm:"foreignKey:CourseID;references:CourseID"         json:"course,omitempty"`
	Submissions []Submission `gorm:"foreignKey:AssignmentID;references:AssignmentID" json:"submissions,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// Submission 作业提交表 — 对应 submissions
// (assignment_id, user_id) 唯一，重复提交原位替换
type Submission struct {
	SubmissionID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	AssignmentID string    `gorm:"type:uuid;not null;uniqueIndex:uk_submissions_assignment_user" json:"assignment_id"`
	UserID       string    `gorm:"type:uuid;not null;uniqueIndex:uk_submissions_assignment_user" json:"user_id"`
	FileURL      string    `gorm:"type:text;not null"                             json:"file_url"`
	Comment      string    `gorm:"type:text;not null;default:''"                  json:"comment"`
	SubmittedAt  time.Time `gorm:"not null"                                       json:"submitted_at"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }
