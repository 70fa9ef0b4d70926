package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"assignment-tracker/backend/internal/model"
)

// MessageRepository 课程聊天消息数据访问接口
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	// ListByCourse 按创建时间升序，附带发送者
	ListByCourse(ctx context.Context, courseID string) ([]model.Message, error)
	DeleteByCourse(ctx context.Context, courseID string) error
}

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo 创建 MessageRepository 实例
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(msg).Error
}

func (r *messageRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("course_id = ?", courseID).
		Order("created_at ASC, message_id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&model.Message{}).Error
}
