package handler

import (
	"go.uber.org/zap"

	"assignment-tracker/backend/config"
	"assignment-tracker/backend/internal/chat"
	"assignment-tracker/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Course     *CourseHandler
	Assignment *AssignmentHandler
	Export     *ExportHandler
	Chat       *ChatHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, hub *chat.Hub, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, logger),
		Course:     NewCourseHandler(svc.Course, svc.Resource, svc.Chat, logger),
		Assignment: NewAssignmentHandler(svc.Assignment, logger),
		Export:     NewExportHandler(svc.Export, logger),
		Chat:       NewChatHandler(svc.Auth, svc.Chat, hub, cfg, logger),
	}
}
