package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"assignment-tracker/backend/internal/dto"
	"assignment-tracker/backend/internal/model"
	"assignment-tracker/backend/internal/policy"
	"assignment-tracker/backend/internal/repository"
)

// ResourceService 课程资料业务接口（只追加）
type ResourceService interface {
	Create(ctx context.Context, caller *model.User, courseID string, req *dto.CreateResourceRequest) (*dto.ResourceResponse, error)
	List(ctx context.Context, caller *model.User, courseID string) ([]dto.ResourceResponse, error)
}

type resourceService struct {
	repo   *repository.Repository
	rules  policy.Evaluator
	logger *zap.Logger
}

// NewResourceService 创建 ResourceService 实例
func NewResourceService(repo *repository.Repository, rules policy.Evaluator, logger *zap.Logger) ResourceService {
	return &resourceService{repo: repo, rules: rules, logger: logger}
}

func (s *resourceService) Create(ctx context.Context, caller *model.User, courseID string, req *dto.CreateResourceRequest) (*dto.ResourceResponse, error) {
	resourceType := req.Type
	if resourceType == "" {
		resourceType = model.ResourceTypeFile
	}
	if resourceType != model.ResourceTypeFile && resourceType != model.ResourceTypeLink {
		return nil, ErrInvalidResourceType
	}

	if _, err := manageableCourse(ctx, s.repo, s.rules, caller, courseID, ErrResourceManageDenied); err != nil {
		return nil, err
	}

	resource := &model.Resource{
		CourseID:   courseID,
		Title:      strings.TrimSpace(req.Title),
		FileURL:    strings.TrimSpace(req.FileURL),
		Type:       resourceType,
		UploadedBy: caller.UserID,
	}
	if err := s.repo.Resource.Create(ctx, resource); err != nil {
		s.logger.Error("创建课程资料失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	resp := toResourceResponse(resource)
	return &resp, nil
}

func (s *resourceService) List(ctx context.Context, caller *model.User, courseID string) ([]dto.ResourceResponse, error) {
	if _, err := accessibleCourse(ctx, s.repo, s.rules, caller, courseID, ErrCourseAccessDenied); err != nil {
		return nil, err
	}

	resources, err := s.repo.Resource.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程资料失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ResourceResponse, 0, len(resources))
	for i := range resources {
		result = append(result, toResourceResponse(&resources[i]))
	}
	return result, nil
}
