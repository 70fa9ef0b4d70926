package model

import "time"

// Message 课程聊天消息表 — 对应 messages
// 创建后不可修改；历史按 created_at 升序
type Message struct {
	MessageID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	CourseID  string    `gorm:"type:uuid;not null;index:idx_messages_course_created,priority:1" json:"course_id"`
	SenderID  string    `gorm:"type:uuid;not null"                             json:"sender_id"`
	Content   string    `gorm:"type:text;not null"                             json:"content"`
	CreatedAt time.Time `gorm:"not null;index:idx_messages_course_created,priority:2" json:"created_at"`

	// 关联
	Sender *User `gorm:"foreignKey:SenderID;references:UserID" json:"sender,omitempty"`
}

// TableName 指定表名
func (Message) TableName() string { return "messages" }
