package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"assignment-tracker/backend/internal/model"
)

// AssignmentFilter 作业列表筛选条件
type AssignmentFilter struct {
	UserID   string // 只返回该用户可访问课程下的作业
	CourseID string
	Status   string
	DueFrom  *time.Time // [DueFrom, DueTo)
	DueTo    *time.Time
}

// AssignmentRepository 作业及提交记录数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	// GetByID 加载课程（含成员）与提交记录（含提交人）
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	// LockByID 对作业行加 FOR UPDATE 锁，必须在事务中调用
	LockByID(ctx context.Context, id string) error
	List(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error)
	Update(ctx context.Context, assignment *model.Assignment) error
	UpdateStatus(ctx context.Context, id, status string) error
	// UpsertSubmission 以 (assignment_id, user_id) 为键插入或原位替换
	UpsertSubmission(ctx context.Context, sub *model.Submission) error
	Delete(ctx context.Context, id string) error
	DeleteByCourse(ctx context.Context, courseID string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.withDetails(r.db.WithContext(ctx)).
		Preload("Course.Members").
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) LockByID(ctx context.Context, id string) error {
	var assignment model.Assignment
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("assignment_id").
		Where("assignment_id = ?", id).
		First(&assignment).Error
}

func (r *assignmentRepo) List(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, error) {
	db := r.db.WithContext(ctx).Model(&model.Assignment{})

	if filter.UserID != "" {
		accessible := r.db.Model(&model.Course{}).
			Select("course_id").
			Where("owner_id = ? OR course_id IN (?)", filter.UserID, memberCourseIDs(r.db, filter.UserID))
		db = db.Where("course_id IN (?)", accessible)
	}
	if filter.CourseID != "" {
		db = db.Where("course_id = ?", filter.CourseID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.DueFrom != nil {
		db = db.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		db = db.Where("due_date < ?", *filter.DueTo)
	}

	var assignments []model.Assignment
	err := r.withDetails(db).
		Order("due_date ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("course_id = ?", courseID).
		Order("due_date ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) Update(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", assignment.AssignmentID).
		Updates(map[string]interface{}{
			"title":       assignment.Title,
			"description": assignment.Description,
			"due_date":    assignment.DueDate,
			"priority":    assignment.Priority,
			"status":      assignment.Status,
		}).Error
}

func (r *assignmentRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", id).
		Update("status", status).Error
}

// UpsertSubmission 冲突时保留原记录的 submission_id 与 created_at，提交顺序不变
func (r *assignmentRepo) UpsertSubmission(ctx context.Context, sub *model.Submission) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"file_url", "comment", "submitted_at", "updated_at"}),
		}).
		Create(sub).Error
}

func (r *assignmentRepo) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("assignment_id = ?", id).Delete(&model.Submission{}).Error; err != nil {
		return err
	}
	return db.Where("assignment_id = ?", id).Delete(&model.Assignment{}).Error
}

func (r *assignmentRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	db := r.db.WithContext(ctx)
	ids := r.db.Model(&model.Assignment{}).Select("assignment_id").Where("course_id = ?", courseID)
	if err := db.Where("assignment_id IN (?)", ids).Delete(&model.Submission{}).Error; err != nil {
		return err
	}
	return db.Where("course_id = ?", courseID).Delete(&model.Assignment{}).Error
}

// withDetails 预加载课程摘要与按提交先后排序的提交记录
func (r *assignmentRepo) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Course").
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Submissions.User")
}
