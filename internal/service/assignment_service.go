package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"assignment-tracker/backend/internal/dto"
	"assignment-tracker/backend/internal/model"
	"assignment-tracker/backend/internal/policy"
	"assignment-tracker/backend/internal/repository"
	"assignment-tracker/backend/internal/workflow"
)

// AssignmentService 作业业务接口
// 状态变更全部经由 workflow 包，并在持有作业行锁的事务中落库
type AssignmentService interface {
	Create(ctx context.Context, caller *model.User, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error)
	List(ctx context.Context, caller *model.User, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, caller *model.User, id string) (*dto.AssignmentResponse, error)
	Update(ctx context.Context, caller *model.User, id string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error)
	Delete(ctx context.Context, caller *model.User, id string) error
	Submit(ctx context.Context, caller *model.User, id string, req *dto.SubmitAssignmentRequest) (*dto.AssignmentResponse, error)
	Grade(ctx context.Context, caller *model.User, id string) (*dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo   *repository.Repository
	rules  policy.Evaluator
	logger *zap.Logger
	now    func() time.Time
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, rules policy.Evaluator, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, rules: rules, logger: logger, now: time.Now}
}

func (s *assignmentService) Create(ctx context.Context, caller *model.User, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	dueDate, err := s.parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	if _, err := manageableCourse(ctx, s.repo, s.rules, caller, req.CourseID, ErrAssignmentManageDenied); err != nil {
		return nil, err
	}

	assignment, err := workflow.NewAssignment(req.CourseID, req.Title, req.Description, dueDate, req.Priority)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Assignment.Create(ctx, assignment); err != nil {
		s.logger.Error("创建作业失败", zap.String("course_id", req.CourseID), zap.Error(err))
		return nil, err
	}

	return s.reload(ctx, assignment.AssignmentID)
}

func (s *assignmentService) List(ctx context.Context, caller *model.User, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, error) {
	filter := repository.AssignmentFilter{
		UserID:   caller.UserID,
		CourseID: req.CourseID,
		Status:   req.Status,
	}
	if req.DueDate != "" {
		day, err := time.Parse(time.DateOnly, req.DueDate)
		if err != nil {
			return nil, ErrInvalidDueDate
		}
		next := day.Add(24 * time.Hour)
		filter.DueFrom, filter.DueTo = &day, &next
	}

	assignments, err := s.repo.Assignment.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询作业列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, toAssignmentResponse(&assignments[i]))
	}
	return result, nil
}

func (s *assignmentService) Get(ctx context.Context, caller *model.User, id string) (*dto.AssignmentResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrAssignmentNotFound)
	}
	if err := s.require(s.rules.CanAccessCourse(caller, assignment.Course)); err != nil {
		return nil, err
	}
	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

func (s *assignmentService) Update(ctx context.Context, caller *model.User, id string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error) {
	patch := workflow.Patch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
	}
	if req.DueDate != nil {
		due, err := dto.ParseDueDate(*req.DueDate)
		if err != nil {
			return nil, ErrInvalidDueDate
		}
		patch.DueDate = &due
	}

	err := s.mutate(ctx, caller, id, s.rules.CanManageAssignment, ErrAssignmentManageDenied,
		func(tx *repository.Repository, a *model.Assignment) error {
			if err := workflow.ApplyPatch(a, patch); err != nil {
				return err
			}
			return tx.Assignment.Update(ctx, a)
		})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *assignmentService) Delete(ctx context.Context, caller *model.User, id string) error {
	return s.mutate(ctx, caller, id, s.rules.CanManageAssignment, ErrAssignmentManageDenied,
		func(tx *repository.Repository, a *model.Assignment) error {
			return tx.Assignment.Delete(ctx, a.AssignmentID)
		})
}

func (s *assignmentService) Submit(ctx context.Context, caller *model.User, id string, req *dto.SubmitAssignmentRequest) (*dto.AssignmentResponse, error) {
	err := s.mutate(ctx, caller, id, s.rules.CanSubmit, ErrAssignmentAccessDenied,
		func(tx *repository.Repository, a *model.Assignment) error {
			sub, err := workflow.Submit(a, caller.UserID, req.FileURL, req.Comment, s.now().UTC())
			if err != nil {
				return err
			}
			row := &model.Submission{
				AssignmentID: a.AssignmentID,
				UserID:       sub.UserID,
				FileURL:      sub.FileURL,
				Comment:      sub.Comment,
				SubmittedAt:  sub.SubmittedAt,
			}
			if err := tx.Assignment.UpsertSubmission(ctx, row); err != nil {
				return err
			}
			return tx.Assignment.UpdateStatus(ctx, a.AssignmentID, a.Status)
		})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *assignmentService) Grade(ctx context.Context, caller *model.User, id string) (*dto.AssignmentResponse, error) {
	err := s.mutate(ctx, caller, id, s.rules.CanManageAssignment, ErrAssignmentManageDenied,
		func(tx *repository.Repository, a *model.Assignment) error {
			workflow.Grade(a)
			return tx.Assignment.UpdateStatus(ctx, a.AssignmentID, a.Status)
		})
	if err != nil {
		return nil, err
	}
	s.logger.Info("作业已评分", zap.String("assignment_id", id), zap.String("grader", caller.UserID))
	return s.reload(ctx, id)
}

// mutate 在事务中锁定作业行、重新加载并完成权限判定后执行 fn
// 同一作业上的提交与评分由行锁串行化
func (s *assignmentService) mutate(
	ctx context.Context,
	caller *model.User,
	id string,
	allowed func(*model.User, *model.Assignment) (bool, error),
	denied error,
	fn func(tx *repository.Repository, a *model.Assignment) error,
) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Assignment.LockByID(ctx, id); err != nil {
			return notFound(err, ErrAssignmentNotFound)
		}
		a, err := tx.Assignment.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrAssignmentNotFound)
		}

		ok, err := allowed(caller, a)
		if err != nil {
			return err
		}
		if !ok {
			return denied
		}
		return fn(tx, a)
	})
	if err != nil && !isBusinessErr(err) {
		s.logger.Error("作业写入失败", zap.String("assignment_id", id), zap.Error(err))
	}
	return err
}

func (s *assignmentService) require(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return ErrAssignmentAccessDenied
	}
	return nil
}

func (s *assignmentService) reload(ctx context.Context, id string) (*dto.AssignmentResponse, error) {
	a, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询作业失败", zap.String("assignment_id", id), zap.Error(err))
		return nil, err
	}
	resp := toAssignmentResponse(a)
	return &resp, nil
}

// parseDueDate 创建时截止日期不能早于今天（UTC）
func (s *assignmentService) parseDueDate(raw string) (time.Time, error) {
	due, err := dto.ParseDueDate(raw)
	if err != nil {
		return time.Time{}, ErrInvalidDueDate
	}
	if due.Before(s.now().UTC().Truncate(24 * time.Hour)) {
		return time.Time{}, ErrInvalidDueDate
	}
	return due, nil
}
