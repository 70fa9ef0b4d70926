package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"assignment-tracker/backend/internal/dto"
	"assignment-tracker/backend/internal/model"
	"assignment-tracker/backend/internal/policy"
	"assignment-tracker/backend/internal/repository"
)

// RoomManager 课程聊天室的生命周期操作
type RoomManager interface {
	EvictUser(courseID, userID string) int
	CloseRoom(courseID string)
}

// CourseService 课程业务接口
// caller 只需携带 UserID 与 Role
type CourseService interface {
	Create(ctx context.Context, caller *model.User, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	List(ctx context.Context, caller *model.User) ([]dto.CourseResponse, error)
	Get(ctx context.Context, caller *model.User, courseID string) (*dto.CourseDetailResponse, error)
	Update(ctx context.Context, caller *model.User, courseID string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	// Delete 级联删除作业、提交、资料、消息与成员关系，并解散聊天室
	Delete(ctx context.Context, caller *model.User, courseID string) error
	Enroll(ctx context.Context, caller *model.User, courseID string) (*dto.CourseResponse, error)
	// Leave 未加入时视为成功
	Leave(ctx context.Context, caller *model.User, courseID string) error
}

type courseService struct {
	repo   *repository.Repository
	rules  policy.Evaluator
	rooms  RoomManager
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, rules policy.Evaluator, rooms RoomManager, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, rules: rules, rooms: rooms, logger: logger}
}

func (s *courseService) Create(ctx context.Context, caller *model.User, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	course := &model.Course{
		Title:       strings.TrimSpace(req.Title),
		Code:        dto.NormalizeCourseCode(req.Code),
		Description: strings.TrimSpace(req.Description),
		OwnerID:     caller.UserID,
	}

	// 课程与所有者成员关系在同一事务中写入
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Course.Create(ctx, course); err != nil {
			return err
		}
		_, err := tx.Course.AddMember(ctx, course.CourseID, caller.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCourseCodeExists
		}
		s.logger.Error("创建课程失败", zap.String("code", course.Code), zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Course.GetByID(ctx, course.CourseID)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	resp := toCourseResponse(created)
	return &resp, nil
}

func (s *courseService) List(ctx context.Context, caller *model.User) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.ListAccessible(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, toCourseResponse(&courses[i]))
	}
	return result, nil
}

func (s *courseService) Get(ctx context.Context, caller *model.User, courseID string) (*dto.CourseDetailResponse, error) {
	course, err := accessibleCourse(ctx, s.repo, s.rules, caller, courseID, ErrCourseAccessDenied)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.Assignment.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程作业失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		items = append(items, toAssignmentResponse(&assignments[i]))
	}
	return &dto.CourseDetailResponse{Course: toCourseResponse(course), Assignments: items}, nil
}

func (s *courseService) Update(ctx context.Context, caller *model.User, courseID string, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := manageableCourse(ctx, s.repo, s.rules, caller, courseID, ErrCourseManageDenied)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		course.Description = strings.TrimSpace(*req.Description)
	}
	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) Delete(ctx context.Context, caller *model.User, courseID string) error {
	if _, err := manageableCourse(ctx, s.repo, s.rules, caller, courseID, ErrCourseManageDenied); err != nil {
		return err
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Assignment.DeleteByCourse(ctx, courseID); err != nil {
			return err
		}
		if err := tx.Resource.DeleteByCourse(ctx, courseID); err != nil {
			return err
		}
		if err := tx.Message.DeleteByCourse(ctx, courseID); err != nil {
			return err
		}
		return tx.Course.Delete(ctx, courseID)
	})
	if err != nil {
		s.logger.Error("删除课程失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}

	s.rooms.CloseRoom(courseID)
	s.logger.Info("课程已删除", zap.String("course_id", courseID), zap.String("operator", caller.UserID))
	return nil
}

func (s *courseService) Enroll(ctx context.Context, caller *model.User, courseID string) (*dto.CourseResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}

	added, err := s.repo.Course.AddMember(ctx, courseID, caller.UserID)
	if err != nil {
		s.logger.Error("加入课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	if !added {
		return nil, ErrAlreadyEnrolled
	}

	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) Leave(ctx context.Context, caller *model.User, courseID string) error {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		return notFound(err, ErrCourseNotFound)
	}
	if course.OwnerID == caller.UserID {
		return ErrOwnerCannotLeave
	}

	if _, err := s.repo.Course.RemoveMember(ctx, courseID, caller.UserID); err != nil {
		s.logger.Error("退出课程失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}

	// 已退出的用户不应继续收到该课程的消息
	s.rooms.EvictUser(courseID, caller.UserID)
	return nil
}

// ── 课程加载与权限判定（各 Service 共用） ──

// accessibleCourse 加载课程并要求 caller 可访问，否则返回 denied
func accessibleCourse(ctx context.Context, repo *repository.Repository, rules policy.Evaluator, caller *model.User, courseID string, denied error) (*model.Course, error) {
	course, err := repo.Course.GetByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	ok, err := rules.CanAccessCourse(caller, course)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, denied
	}
	return course, nil
}

// manageableCourse 加载课程并要求 caller 可管理，否则返回 denied
func manageableCourse(ctx context.Context, repo *repository.Repository, rules policy.Evaluator, caller *model.User, courseID string, denied error) (*model.Course, error) {
	course, err := repo.Course.GetByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	ok, err := rules.CanManageCourse(caller, course)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, denied
	}
	return course, nil
}
