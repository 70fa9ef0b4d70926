package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"assignment-tracker/backend/config"
)

// dispatchTimeout 单个上行事件的处理时限，与连接生命周期无关：
// 连接断开不会取消已在处理中的发送
const dispatchTimeout = 10 * time.Second

// Dispatcher 处理连接上收到的事件
type Dispatcher interface {
	Dispatch(ctx context.Context, ch Channel, ev InboundEvent)
}

// Client websocket 连接，实现 Channel
// readPump 与 writePump 各占一个 goroutine，所有写操作都经 send 交给 writePump
type Client struct {
	id       string
	userID   string
	userName string

	conn       *websocket.Conn
	hub        *Hub
	dispatcher Dispatcher
	cfg        *config.ChatConfig
	logger     *zap.Logger

	mu     sync.Mutex
	closed bool
	send   chan Event
}

// NewClient 包装已升级的 websocket 连接
func NewClient(conn *websocket.Conn, hub *Hub, dispatcher Dispatcher, userID, userName string, cfg *config.ChatConfig, logger *zap.Logger) *Client {
	return &Client{
		id:         uuid.NewString(),
		userID:     userID,
		userName:   userName,
		conn:       conn,
		hub:        hub,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
		send:       make(chan Event, cfg.SendBuffer),
	}
}

func (c *Client) ID() string       { return c.id }
func (c *Client) UserID() string   { return c.userID }
func (c *Client) UserName() string { return c.userName }

// Deliver 非阻塞入队
func (c *Client) Deliver(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// Close 关闭下行队列，writePump 发送 close 帧后断开
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Start 登记到 Hub 并启动读写循环
func (c *Client) Start() error {
	if err := c.hub.Register(c); err != nil {
		c.conn.Close()
		return err
	}
	go c.writePump()
	go c.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxFrameBytes)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("聊天连接异常断开", zap.String("conn_id", c.id), zap.Error(err))
			}
			return
		}

		var ev InboundEvent
		if err := json.Unmarshal(data, &ev); err != nil || ev.Name == "" {
			c.Deliver(ErrorEvent(ErrBadPayload, ""))
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		c.dispatcher.Dispatch(ctx, c, ev)
		cancel()
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
