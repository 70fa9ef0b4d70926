package model

import "time"

// 资料类型
const (
	ResourceTypeFile = "file"
	ResourceTypeLink = "link"
)

// Resource 课程资料表 — 对应 resources（只追加）
type Resource struct {
	ResourceID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"resource_id"`
	CourseID   string    `gorm:"type:uuid;not null;index"                       json:"course_id"`
	Title      string    `gorm:"type:varchar(100);not null"                     json:"title"`
	FileURL    string    `gorm:"type:text;not null"                             json:"file_url"`
	Type       string    `gorm:"type:varchar(10);not null;default:'file'"       json:"type"`
	UploadedBy string    `gorm:"type:uuid;not null"                             json:"uploaded_by"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Uploader *User `gorm:"foreignKey:UploadedBy;references:UserID" json:"uploader,omitempty"`
}

// TableName 指定表名
func (Resource) TableName() string { return "resources" }
