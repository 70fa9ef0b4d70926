package dto

import (
	"time"

	"assignment-tracker/backend/internal/model"
)

// ── 聊天消息 ──
// 历史接口与实时推送 receive_message 共用同一结构

// MessageSender 消息发送者
type MessageSender struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// MessageResponse 聊天消息
type MessageResponse struct {
	ID        string        `json:"_id"`
	CourseID  string        `json:"courseId"`
	Content   string        `json:"content"`
	Sender    MessageSender `json:"sender"`
	CreatedAt time.Time     `json:"createdAt"`
}

// NewMessageResponse 从模型构造消息响应，senderName 为空时取已加载的 Sender
func NewMessageResponse(m *model.Message, senderName string) MessageResponse {
	if senderName == "" && m.Sender != nil {
		senderName = m.Sender.Name
	}
	return MessageResponse{
		ID:        m.MessageID,
		CourseID:  m.CourseID,
		Content:   m.Content,
		Sender:    MessageSender{ID: m.SenderID, Name: senderName},
		CreatedAt: m.CreatedAt,
	}
}
