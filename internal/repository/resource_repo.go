package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"assignment-tracker/backend/internal/model"
)

// ResourceRepository 课程资料数据访问接口（只追加）
type ResourceRepository interface {
	Create(ctx context.Context, resource *model.Resource) error
	ListByCourse(ctx context.Context, courseID string) ([]model.Resource, error)
	DeleteByCourse(ctx context.Context, courseID string) error
}

type resourceRepo struct {
	db *gorm.DB
}

// NewResourceRepo 创建 ResourceRepository 实例
func NewResourceRepo(db *gorm.DB) ResourceRepository {
	return &resourceRepo{db: db}
}

func (r *resourceRepo) Create(ctx context.Context, resource *model.Resource) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(resource).Error
}

// ListByCourse 按上传时间倒序
func (r *resourceRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Resource, error) {
	var resources []model.Resource
	err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&resources).Error
	return resources, err
}

func (r *resourceRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&model.Resource{}).Error
}
