package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"assignment-tracker/backend/internal/dto"
	"assignment-tracker/backend/internal/model"
)

// ── 测试替身 ──

type fakeChannel struct {
	id, userID, name string
	capacity         int // 0 表示不限

	mu     sync.Mutex
	events []Event
	closed bool
}

func newFakeChannel(id, userID, name string) *fakeChannel {
	return &fakeChannel{id: id, userID: userID, name: name}
}

func (f *fakeChannel) ID() string       { return f.id }
func (f *fakeChannel) UserID() string   { return f.userID }
func (f *fakeChannel) UserName() string { return f.name }

func (f *fakeChannel) Deliver(ev Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || (f.capacity > 0 && len(f.events) >= f.capacity) {
		return false
	}
	f.events = append(f.events, ev)
	return true
}

func (f *fakeChannel) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeChannel) received() []dto.MessageResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dto.MessageResponse
	for _, ev := range f.events {
		if ev.Name == EventReceiveMessage {
			out = append(out, ev.Data.(dto.MessageResponse))
		}
	}
	return out
}

func (f *fakeChannel) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeStore struct {
	mu   sync.Mutex
	msgs []model.Message
	err  error
}

func (s *fakeStore) Create(_ context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	msg.MessageID = fmt.Sprintf("m-%d", len(s.msgs)+1)
	s.msgs = append(s.msgs, *msg)
	return nil
}

func (s *fakeStore) ListByCourse(_ context.Context, courseID string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Message
	for _, m := range s.msgs {
		if m.CourseID == courseID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func newTestHub() (*Hub, *fakeStore) {
	store := &fakeStore{}
	return NewHub(store, 100, zap.NewNop()), store
}

// ── Join / Leave ──

func TestHub_JoinTwiceDeliversOnce(t *testing.T) {
	hub, _ := newTestHub()
	ch := newFakeChannel("c1", "u1", "Alice")

	require.NoError(t, hub.Join(ch, "course-1"))
	require.NoError(t, hub.Join(ch, "course-1"))
	assert.Equal(t, 1, hub.RoomSize("course-1"))

	_, err := hub.PostMessage(context.Background(), "course-1", "u2", "Bob", "hello")
	require.NoError(t, err)
	assert.Len(t, ch.received(), 1)
}

func TestHub_LeaveNeverJoined(t *testing.T) {
	hub, _ := newTestHub()
	ch := newFakeChannel("c1", "u1", "Alice")

	assert.NotPanics(t, func() {
		hub.Leave(ch)
		hub.LeaveRoom(ch, "course-1")
	})
	assert.Equal(t, 0, hub.RoomSize("course-1"))
}

func TestHub_LeaveRemovesFromAllRooms(t *testing.T) {
	hub, _ := newTestHub()
	ch := newFakeChannel("c1", "u1", "Alice")
	require.NoError(t, hub.Join(ch, "course-1"))
	require.NoError(t, hub.Join(ch, "course-2"))

	hub.Leave(ch)

	assert.Equal(t, 0, hub.RoomSize("course-1"))
	assert.Equal(t, 0, hub.RoomSize("course-2"))
	_, err := hub.PostMessage(context.Background(), "course-1", "u2", "Bob", "anyone?")
	require.NoError(t, err)
	assert.Empty(t, ch.received())
}

func TestHub_LeaveRoomKeepsOtherRooms(t *testing.T) {
	hub, _ := newTestHub()
	ch := newFakeChannel("c1", "u1", "Alice")
	require.NoError(t, hub.Join(ch, "course-1"))
	require.NoError(t, hub.Join(ch, "course-2"))

	hub.LeaveRoom(ch, "course-1")

	assert.Equal(t, 0, hub.RoomSize("course-1"))
	assert.Equal(t, 1, hub.RoomSize("course-2"))
}

// ── PostMessage ──

func TestHub_PostMessage_BroadcastIncludesSender(t *testing.T) {
	hub, _ := newTestHub()
	a := newFakeChannel("c1", "u1", "Alice")
	b := newFakeChannel("c2", "u2", "Bob")
	outsider := newFakeChannel("c3", "u3", "Carol")
	require.NoError(t, hub.Join(a, "course-1"))
	require.NoError(t, hub.Join(b, "course-1"))
	require.NoError(t, hub.Join(outsider, "course-2"))

	msg, err := hub.PostMessage(context.Background(), "course-1", "u1", "Alice", "  hi  ")
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Content)

	for _, ch := range []*fakeChannel{a, b} {
		got := ch.received()
		require.Len(t, got, 1)
		assert.Equal(t, msg.MessageID, got[0].ID)
		assert.Equal(t, "hi", got[0].Content)
		assert.Equal(t, "u1", got[0].Sender.ID)
		assert.Equal(t, "Alice", got[0].Sender.Name)
	}
	assert.Empty(t, outsider.received())
}

func TestHub_PostMessage_Validation(t *testing.T) {
	hub, store := newTestHub()

	_, err := hub.PostMessage(context.Background(), "course-1", "u1", "Alice", "   ")
	assert.True(t, errors.Is(err, ErrEmptyMessage))

	long := make([]rune, 101)
	for i := range long {
		long[i] = '字'
	}
	_, err = hub.PostMessage(context.Background(), "course-1", "u1", "Alice", string(long))
	assert.True(t, errors.Is(err, ErrMessageTooLong))

	assert.Empty(t, store.msgs)
}

func TestHub_PostMessage_PersistFailureNoBroadcast(t *testing.T) {
	hub, store := newTestHub()
	store.err = errors.New("db down")
	ch := newFakeChannel("c1", "u1", "Alice")
	require.NoError(t, hub.Join(ch, "course-1"))

	_, err := hub.PostMessage(context.Background(), "course-1", "u1", "Alice", "hello")
	assert.True(t, errors.Is(err, ErrDeliveryFailed))
	assert.Empty(t, ch.received())
}

func TestHub_PostMessage_FullChannelDropped(t *testing.T) {
	hub, _ := newTestHub()
	slow := newFakeChannel("c1", "u1", "Alice")
	slow.capacity = 1
	fast := newFakeChannel("c2", "u2", "Bob")
	require.NoError(t, hub.Join(slow, "course-1"))
	require.NoError(t, hub.Join(fast, "course-1"))

	ctx := context.Background()
	_, err := hub.PostMessage(ctx, "course-1", "u2", "Bob", "one")
	require.NoError(t, err)
	_, err = hub.PostMessage(ctx, "course-1", "u2", "Bob", "two")
	require.NoError(t, err)

	assert.True(t, slow.isClosed())
	assert.Equal(t, 1, hub.RoomSize("course-1"))
	assert.Len(t, fast.received(), 2)
}

func TestHub_PostMessage_StrictlyIncreasingTimestamps(t *testing.T) {
	hub, store := newTestHub()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	hub.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		_, err := hub.PostMessage(context.Background(), "course-1", "u1", "Alice", fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	require.Len(t, store.msgs, 3)
	for i := 1; i < len(store.msgs); i++ {
		assert.True(t, store.msgs[i].CreatedAt.After(store.msgs[i-1].CreatedAt))
	}
}

func roomCount(h *Hub) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func TestHub_EmptyRoomsArePruned(t *testing.T) {
	hub, store := newTestHub()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	hub.now = func() time.Time { return fixed }
	ctx := context.Background()

	a := newFakeChannel("c1", "u1", "Alice")
	b := newFakeChannel("c2", "u2", "Bob")
	require.NoError(t, hub.Join(a, "course-1"))
	require.NoError(t, hub.Join(b, "course-2"))
	_, err := hub.PostMessage(ctx, "course-1", "u1", "Alice", "first")
	require.NoError(t, err)
	assert.Equal(t, 2, roomCount(hub))

	hub.LeaveRoom(a, "course-1")
	assert.Equal(t, 1, roomCount(hub), "最后一个成员离开后房间应回收")
	hub.EvictUser("course-2", "u2")
	assert.Equal(t, 0, roomCount(hub))

	// 无人在线的课程发消息不会留下房间
	_, err = hub.PostMessage(ctx, "course-3", "u1", "Alice", "nobody here")
	require.NoError(t, err)
	assert.Equal(t, 0, roomCount(hub))

	// 房间重建后时间戳仍然递增
	require.NoError(t, hub.Join(a, "course-1"))
	_, err = hub.PostMessage(ctx, "course-1", "u1", "Alice", "second")
	require.NoError(t, err)

	history, err := hub.History(ctx, "course-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[1].CreatedAt.After(history[0].CreatedAt))
	assert.Equal(t, "second", history[1].Content)
	require.Len(t, store.msgs, 3)
}

func TestHub_ConcurrentPostsKeepPersistOrder(t *testing.T) {
	hub, store := newTestHub()
	a := newFakeChannel("c1", "u1", "Alice")
	b := newFakeChannel("c2", "u2", "Bob")
	require.NoError(t, hub.Join(a, "course-1"))
	require.NoError(t, hub.Join(b, "course-1"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hub.PostMessage(context.Background(), "course-1", "u1", "Alice", fmt.Sprintf("m%d", i))
		}(i)
	}
	wg.Wait()

	history, err := hub.History(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, history, 50)
	require.Len(t, store.msgs, 50)

	for _, ch := range []*fakeChannel{a, b} {
		got := ch.received()
		require.Len(t, got, 50)
		for i := range got {
			assert.Equal(t, history[i].MessageID, got[i].ID)
		}
	}
}

// ── History ──

func TestHub_HistoryRoundTrip(t *testing.T) {
	hub, _ := newTestHub()
	ctx := context.Background()

	_, err := hub.PostMessage(ctx, "course-1", "u1", "Alice", "earlier")
	require.NoError(t, err)
	_, err = hub.PostMessage(ctx, "course-2", "u1", "Alice", "elsewhere")
	require.NoError(t, err)
	_, err = hub.PostMessage(ctx, "course-1", "u2", "Bob", "hi")
	require.NoError(t, err)

	history, err := hub.History(ctx, "course-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "earlier", history[0].Content)
	assert.Equal(t, "hi", history[1].Content)
}

// ── 课程生命周期 ──

func TestHub_EvictUser(t *testing.T) {
	hub, _ := newTestHub()
	tab1 := newFakeChannel("c1", "u1", "Alice")
	tab2 := newFakeChannel("c2", "u1", "Alice")
	other := newFakeChannel("c3", "u2", "Bob")
	for _, ch := range []*fakeChannel{tab1, tab2, other} {
		require.NoError(t, hub.Join(ch, "course-1"))
	}

	assert.Equal(t, 2, hub.EvictUser("course-1", "u1"))
	assert.Equal(t, 1, hub.RoomSize("course-1"))
	assert.False(t, tab1.isClosed(), "移出房间不应断开连接")
}

func TestHub_CloseRoom(t *testing.T) {
	hub, _ := newTestHub()
	ch := newFakeChannel("c1", "u1", "Alice")
	require.NoError(t, hub.Join(ch, "course-1"))
	require.NoError(t, hub.Join(ch, "course-2"))

	hub.CloseRoom("course-1")

	assert.Equal(t, 0, hub.RoomSize("course-1"))
	assert.Equal(t, 1, hub.RoomSize("course-2"))
}

func TestHub_Close(t *testing.T) {
	hub, _ := newTestHub()
	joined := newFakeChannel("c1", "u1", "Alice")
	idle := newFakeChannel("c2", "u2", "Bob")
	require.NoError(t, hub.Register(idle))
	require.NoError(t, hub.Join(joined, "course-1"))

	hub.Close()

	assert.True(t, joined.isClosed())
	assert.True(t, idle.isClosed())
	assert.True(t, errors.Is(hub.Join(newFakeChannel("c3", "u3", "Carol"), "course-1"), ErrHubClosed))
	_, err := hub.PostMessage(context.Background(), "course-1", "u1", "Alice", "late")
	assert.True(t, errors.Is(err, ErrHubClosed))
}

// ── 事件解析 ──

func TestParseCourseID(t *testing.T) {
	const id = "3f1c2a9e-8b7d-4c6e-9a5f-1d2e3c4b5a60"

	got, err := ParseCourseID([]byte(`"` + id + `"`))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = ParseCourseID([]byte(`{"courseId":"3F1C2A9E-8B7D-4C6E-9A5F-1D2E3C4B5A60"}`))
	require.NoError(t, err)
	assert.Equal(t, id, got, "大写 ID 应规范化为小写")

	for _, raw := range []string{`42`, `""`, `{}`, `"not-a-uuid"`, `{"courseId":"CS101"}`, `"1; DROP TABLE"`} {
		_, err = ParseCourseID([]byte(raw))
		assert.True(t, errors.Is(err, ErrBadPayload), "raw=%s", raw)
	}
}

func TestSendMessagePayload_Validate(t *testing.T) {
	p := SendMessagePayload{CourseID: "not-a-uuid", Content: "hi"}
	assert.True(t, errors.Is(p.Validate(), ErrBadPayload))

	p = SendMessagePayload{Content: "hi"}
	assert.True(t, errors.Is(p.Validate(), ErrBadPayload))

	p = SendMessagePayload{CourseID: "3F1C2A9E-8B7D-4C6E-9A5F-1D2E3C4B5A60", Content: "hi"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "3f1c2a9e-8b7d-4c6e-9a5f-1d2e3c4b5a60", p.CourseID)
}

func TestErrorEvent_HidesInternalErrors(t *testing.T) {
	ev := ErrorEvent(errors.New("pq: connection refused"), "course-1")
	payload := ev.Data.(ErrorPayload)
	assert.Equal(t, EventError, ev.Name)
	assert.Equal(t, ErrDeliveryFailed.Code, payload.Code)
	assert.Equal(t, "course-1", payload.CourseID)
}
