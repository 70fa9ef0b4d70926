package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"assignment-tracker/backend/internal/model"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	ListAccessible(ctx context.Context, userID string) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error
	// AddMember 返回 false 表示已是成员
	AddMember(ctx context.Context, courseID, userID string) (bool, error)
	// RemoveMember 返回 false 表示本就不是成员
	RemoveMember(ctx context.Context, courseID, userID string) (bool, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

// Create 仅写入课程行，成员关系通过 AddMember 维护
func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Members").
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ListAccessible 所有者或成员可见的课程，按创建时间倒序
func (r *courseRepo) ListAccessible(ctx context.Context, userID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Members").
		Where("owner_id = ? OR course_id IN (?)", userID, memberCourseIDs(r.db, userID)).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ?", course.CourseID).
		Updates(map[string]interface{}{
			"title":       course.Title,
			"description": course.Description,
		}).Error
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("course_id = ?", id).Delete(&model.CourseMember{}).Error; err != nil {
		return err
	}
	return db.Where("course_id = ?", id).Delete(&model.Course{}).Error
}

func (r *courseRepo) AddMember(ctx context.Context, courseID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CourseMember{CourseID: courseID, UserID: userID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *courseRepo) RemoveMember(ctx context.Context, courseID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Delete(&model.CourseMember{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// memberCourseIDs 用户作为成员加入的课程 ID 子查询
func memberCourseIDs(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&model.CourseMember{}).Select("course_id").Where("user_id = ?", userID)
}
