package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"assignment-tracker/backend/internal/chat"
	"assignment-tracker/backend/internal/dto"
	"assignment-tracker/backend/internal/model"
	"assignment-tracker/backend/internal/policy"
	"assignment-tracker/backend/internal/repository"
)

// ChatHub 聊天室协调器中业务层用到的部分
type ChatHub interface {
	Join(ch chat.Channel, courseID string) error
	LeaveRoom(ch chat.Channel, courseID string)
	PostMessage(ctx context.Context, courseID, senderID, senderName, content string) (*model.Message, error)
	History(ctx context.Context, courseID string) ([]model.Message, error)
}

// ChatService 课程聊天业务：处理实时通道事件并提供历史消息
type ChatService interface {
	chat.Dispatcher
	History(ctx context.Context, caller *model.User, courseID string) ([]dto.MessageResponse, error)
}

type chatService struct {
	repo   *repository.Repository
	rules  policy.Evaluator
	hub    ChatHub
	logger *zap.Logger
}

// NewChatService 创建 ChatService 实例
func NewChatService(repo *repository.Repository, rules policy.Evaluator, hub ChatHub, logger *zap.Logger) ChatService {
	return &chatService{repo: repo, rules: rules, hub: hub, logger: logger}
}

// Dispatch 处理一条上行事件，错误只回送给该连接
func (s *chatService) Dispatch(ctx context.Context, ch chat.Channel, ev chat.InboundEvent) {
	var (
		courseID string
		err      error
	)

	switch ev.Name {
	case chat.EventJoinRoom:
		courseID, err = chat.ParseCourseID(ev.Data)
		if err == nil {
			err = s.join(ctx, ch, courseID)
		}
	case chat.EventLeaveRoom:
		courseID, err = chat.ParseCourseID(ev.Data)
		if err == nil {
			s.hub.LeaveRoom(ch, courseID)
		}
	case chat.EventSendMessage:
		var p chat.SendMessagePayload
		if jsonErr := json.Unmarshal(ev.Data, &p); jsonErr != nil {
			err = chat.ErrBadPayload
			break
		}
		if err = p.Validate(); err != nil {
			break
		}
		courseID = p.CourseID
		err = s.send(ctx, ch, &p)
	default:
		err = chat.ErrUnknownEvent
	}

	if err != nil {
		if !isBusinessErr(err) {
			s.logger.Error("处理聊天事件失败",
				zap.String("event", ev.Name),
				zap.String("conn_id", ch.ID()),
				zap.String("course_id", courseID),
				zap.Error(err),
			)
		}
		ch.Deliver(chat.ErrorEvent(err, courseID))
	}
}

// join 进入房间前重新校验课程访问权限
func (s *chatService) join(ctx context.Context, ch chat.Channel, courseID string) error {
	caller := &model.User{UserID: ch.UserID()}
	if _, err := accessibleCourse(ctx, s.repo, s.rules, caller, courseID, chat.ErrRoomForbidden); err != nil {
		return err
	}
	return s.hub.Join(ch, courseID)
}

// send 发送者身份取自连接，忽略客户端声明的 senderId/senderName
func (s *chatService) send(ctx context.Context, ch chat.Channel, p *chat.SendMessagePayload) error {
	caller := &model.User{UserID: ch.UserID()}
	if _, err := accessibleCourse(ctx, s.repo, s.rules, caller, p.CourseID, chat.ErrRoomForbidden); err != nil {
		return err
	}
	_, err := s.hub.PostMessage(ctx, p.CourseID, ch.UserID(), ch.UserName(), p.Content)
	return err
}

func (s *chatService) History(ctx context.Context, caller *model.User, courseID string) ([]dto.MessageResponse, error) {
	if _, err := accessibleCourse(ctx, s.repo, s.rules, caller, courseID, ErrCourseAccessDenied); err != nil {
		return nil, err
	}

	messages, err := s.hub.History(ctx, courseID)
	if err != nil {
		s.logger.Error("查询聊天记录失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		result = append(result, dto.NewMessageResponse(&messages[i], ""))
	}
	return result, nil
}
