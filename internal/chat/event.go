package chat

import (
	"encoding/json"

	"github.com/google/uuid"

	pkgerrors "assignment-tracker/backend/pkg/errors"
)

// 通道事件名
const (
	EventJoinRoom       = "join_room"
	EventLeaveRoom      = "leave_room"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventError          = "error"
)

// ── 聊天模块业务错误 ──

var (
	ErrEmptyMessage   = pkgerrors.New(pkgerrors.KindValidation, 23001, "消息内容不能为空")
	ErrMessageTooLong = pkgerrors.New(pkgerrors.KindValidation, 23002, "消息内容过长")
	ErrRoomForbidden  = pkgerrors.New(pkgerrors.KindAuthorization, 23003, "无权进入该课程聊天室")
	ErrDeliveryFailed = pkgerrors.New(pkgerrors.KindInternal, 23004, "消息发送失败")
	ErrUnknownEvent   = pkgerrors.New(pkgerrors.KindValidation, 23005, "未知事件")
	ErrBadPayload     = pkgerrors.New(pkgerrors.KindValidation, 23006, "事件数据格式错误")
	ErrHubClosed      = pkgerrors.New(pkgerrors.KindInternal, 23007, "聊天服务已关闭")
)

// Event 下行事件，线上格式 {"event": ..., "data": ...}
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// InboundEvent 上行事件，data 延迟解析
type InboundEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// SendMessagePayload send_message 的数据
// senderId/senderName 仅为兼容旧客户端保留，发送者始终取自连接身份
type SendMessagePayload struct {
	CourseID   string `json:"courseId"`
	SenderID   string `json:"senderId,omitempty"`
	SenderName string `json:"senderName,omitempty"`
	Content    string `json:"content"`
}

// Validate 课程 ID 必须是合法 UUID，格式错误按参数错误处理而不是落到存储层
// 校验通过后 CourseID 规范化为小写带连字符形式
func (p *SendMessagePayload) Validate() error {
	id, ok := canonicalCourseID(p.CourseID)
	if !ok {
		return ErrBadPayload
	}
	p.CourseID = id
	return nil
}

// ErrorPayload error 事件的数据，只发给出错的连接
type ErrorPayload struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	CourseID string `json:"courseId,omitempty"`
}

// ErrorEvent 将错误转换为 error 事件，非业务错误统一为发送失败
func ErrorEvent(err error, courseID string) Event {
	appErr, ok := pkgerrors.As(err)
	if !ok {
		appErr = ErrDeliveryFailed
	}
	return Event{
		Name: EventError,
		Data: ErrorPayload{Code: appErr.Code, Message: appErr.Message, CourseID: courseID},
	}
}

// ParseCourseID 解析 join_room / leave_room 的数据
// 兼容纯字符串与 {"courseId": "..."} 两种写法，ID 不是 UUID 时返回 ErrBadPayload
func ParseCourseID(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		var obj struct {
			CourseID string `json:"courseId"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", ErrBadPayload
		}
		id = obj.CourseID
	}
	canonical, ok := canonicalCourseID(id)
	if !ok {
		return "", ErrBadPayload
	}
	return canonical, nil
}

func canonicalCourseID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}
