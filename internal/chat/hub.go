// Package chat 课程聊天室：维护每门课程当前在线连接的房间成员，
// 持久化消息并按持久化顺序广播给房间内所有连接（包括发送者自己）。
//
// 房间成员表只存在于本进程内，只能通过 Hub 的方法修改。
package chat

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"assignment-tracker/backend/internal/dto"
	"assignment-tracker/backend/internal/model"
)

// MessageStore 消息持久化
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	ListByCourse(ctx context.Context, courseID string) ([]model.Message, error)
}

// Channel 一条已认证的实时连接
type Channel interface {
	ID() string
	UserID() string
	UserName() string
	// Deliver 非阻塞投递，返回 false 表示连接已关闭或缓冲已满
	Deliver(ev Event) bool
	Close()
}

// room 同一房间的 持久化+广播 由 mu 串行化，保证广播顺序与落库顺序一致
// 没有成员且没有进行中的发送时从 Hub 中移除
type room struct {
	mu      sync.Mutex
	members map[string]Channel // 受 Hub.mu 保护
	posting int                // 进行中的 PostMessage 数，受 Hub.mu 保护
}

// Hub 聊天室协调器
type Hub struct {
	store  MessageStore
	maxLen int
	logger *zap.Logger
	now    func() time.Time

	mu     sync.RWMutex
	conns  map[string]Channel             // 已注册的在线连接
	rooms  map[string]*room               // courseID → room，只保留有成员或正在发送的房间
	joined map[string]map[string]struct{} // channelID → courseIDs
	closed bool

	// 消息时间戳全局严格递增，房间被回收重建后同一课程内仍然递增
	stampMu   sync.Mutex
	lastStamp time.Time
}

// NewHub 创建聊天室协调器，maxLen <= 0 表示不限制消息长度
func NewHub(store MessageStore, maxLen int, logger *zap.Logger) *Hub {
	return &Hub{
		store:  store,
		maxLen: maxLen,
		logger: logger,
		now:    time.Now,
		conns:  make(map[string]Channel),
		rooms:  make(map[string]*room),
		joined: make(map[string]map[string]struct{}),
	}
}

// roomLocked 获取或创建房间，调用方须持有 h.mu 写锁
func (h *Hub) roomLocked(courseID string) *room {
	rm, ok := h.rooms[courseID]
	if !ok {
		rm = &room{members: make(map[string]Channel)}
		h.rooms[courseID] = rm
	}
	return rm
}

// pruneLocked 回收空房间，调用方须持有 h.mu 写锁
func (h *Hub) pruneLocked(courseID string, rm *room) {
	if len(rm.members) == 0 && rm.posting == 0 && h.rooms[courseID] == rm {
		delete(h.rooms, courseID)
	}
}

// nextStamp 数据库精度为微秒
func (h *Hub) nextStamp() time.Time {
	h.stampMu.Lock()
	defer h.stampMu.Unlock()
	t := h.now().UTC().Truncate(time.Microsecond)
	if !t.After(h.lastStamp) {
		t = h.lastStamp.Add(time.Microsecond)
	}
	h.lastStamp = t
	return t
}

// Register 登记新连接，Hub 关闭时统一断开
func (h *Hub) Register(ch Channel) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.conns[ch.ID()] = ch
	return nil
}

// Join 将连接加入课程房间，重复加入无副作用
func (h *Hub) Join(ch Channel, courseID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}

	rm := h.roomLocked(courseID)
	if _, ok := rm.members[ch.ID()]; ok {
		return nil
	}
	rm.members[ch.ID()] = ch

	set, ok := h.joined[ch.ID()]
	if !ok {
		set = make(map[string]struct{})
		h.joined[ch.ID()] = set
	}
	set[courseID] = struct{}{}

	h.logger.Debug("连接加入聊天室",
		zap.String("conn_id", ch.ID()),
		zap.String("user_id", ch.UserID()),
		zap.String("course_id", courseID),
	)
	return nil
}

// LeaveRoom 将连接移出指定房间，未加入时什么也不做
func (h *Hub) LeaveRoom(ch Channel, courseID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(ch.ID(), courseID)
}

// Leave 将连接移出其加入的所有房间（断线清理），未加入过时什么也不做
func (h *Hub) Leave(ch Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for courseID := range h.joined[ch.ID()] {
		h.removeLocked(ch.ID(), courseID)
	}
	delete(h.joined, ch.ID())
	delete(h.conns, ch.ID())
}

func (h *Hub) removeLocked(chID, courseID string) {
	if rm, ok := h.rooms[courseID]; ok {
		delete(rm.members, chID)
		h.pruneLocked(courseID, rm)
	}
	if set, ok := h.joined[chID]; ok {
		delete(set, courseID)
		if len(set) == 0 {
			delete(h.joined, chID)
		}
	}
}

// EvictUser 将某用户的所有连接移出房间（退出课程后调用），返回移出的连接数
func (h *Hub) EvictUser(courseID, userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[courseID]
	if !ok {
		return 0
	}
	n := 0
	for id, ch := range rm.members {
		if ch.UserID() == userID {
			h.removeLocked(id, courseID)
			n++
		}
	}
	return n
}

// CloseRoom 解散房间（课程删除后调用），连接本身保持在线
func (h *Hub) CloseRoom(courseID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[courseID]
	if !ok {
		return
	}
	for id := range rm.members {
		h.removeLocked(id, courseID)
	}
	delete(h.rooms, courseID)
}

// RoomSize 房间内当前连接数
func (h *Hub) RoomSize(courseID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if rm, ok := h.rooms[courseID]; ok {
		return len(rm.members)
	}
	return 0
}

// PostMessage 校验、持久化并广播一条消息
// 持久化失败时不广播，返回 ErrDeliveryFailed；广播包含发送者自己的连接
func (h *Hub) PostMessage(ctx context.Context, courseID, senderID, senderName, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if h.maxLen > 0 && utf8.RuneCountInString(content) > h.maxLen {
		return nil, ErrMessageTooLong
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	rm := h.roomLocked(courseID)
	rm.posting++
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		rm.posting--
		h.pruneLocked(courseID, rm)
		h.mu.Unlock()
	}()

	rm.mu.Lock()
	defer rm.mu.Unlock()

	createdAt := h.nextStamp()

	msg := &model.Message{
		CourseID:  courseID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: createdAt,
	}
	if err := h.store.Create(ctx, msg); err != nil {
		h.logger.Error("消息持久化失败",
			zap.String("course_id", courseID),
			zap.String("sender_id", senderID),
			zap.Error(err),
		)
		return nil, ErrDeliveryFailed
	}
	msg.Sender = &model.User{UserID: senderID, Name: senderName}

	h.broadcast(courseID, rm, Event{
		Name: EventReceiveMessage,
		Data: dto.NewMessageResponse(msg, senderName),
	})
	return msg, nil
}

// broadcast 向房间快照投递，投递失败的连接被移出并关闭
func (h *Hub) broadcast(courseID string, rm *room, ev Event) {
	h.mu.RLock()
	targets := make([]Channel, 0, len(rm.members))
	for _, ch := range rm.members {
		targets = append(targets, ch)
	}
	h.mu.RUnlock()

	for _, ch := range targets {
		if ch.Deliver(ev) {
			continue
		}
		h.logger.Warn("连接下行缓冲已满，断开",
			zap.String("conn_id", ch.ID()),
			zap.String("user_id", ch.UserID()),
			zap.String("course_id", courseID),
		)
		h.Leave(ch)
		ch.Close()
	}
}

// History 课程全部消息，按创建时间升序
func (h *Hub) History(ctx context.Context, courseID string) ([]model.Message, error) {
	return h.store.ListByCourse(ctx, courseID)
}

// Close 关闭所有连接并拒绝后续加入与发送
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true

	seen := make(map[string]Channel, len(h.conns))
	for id, ch := range h.conns {
		seen[id] = ch
	}
	for _, rm := range h.rooms {
		for id, ch := range rm.members {
			seen[id] = ch
		}
	}
	h.conns = make(map[string]Channel)
	h.rooms = make(map[string]*room)
	h.joined = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, ch := range seen {
		ch.Close()
	}
	h.logger.Info("聊天服务已关闭", zap.Int("connections", len(seen)))
}
