package service

import (
	"go.uber.org/zap"

	"assignment-tracker/backend/config"
	"assignment-tracker/backend/internal/chat"
	"assignment-tracker/backend/internal/policy"
	"assignment-tracker/backend/internal/repository"
	"assignment-tracker/backend/pkg/jwt"
	"assignment-tracker/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Course     CourseService
	Assignment AssignmentService
	Resource   ResourceService
	Chat       ChatService
	Export     ExportService
}

// NewService 创建 Service 聚合
// rdb 为 nil 时登出不写黑名单
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	hub *chat.Hub,
	logger *zap.Logger,
) *Service {
	rules := policy.Default
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Course:     NewCourseService(repo, rules, hub, logger),
		Assignment: NewAssignmentService(repo, rules, logger),
		Resource:   NewResourceService(repo, rules, logger),
		Chat:       NewChatService(repo, rules, hub, logger),
		Export:     NewExportService(repo, rules, logger),
	}
}
