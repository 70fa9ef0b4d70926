package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"assignment-tracker/backend/config"
	"assignment-tracker/backend/internal/api/middleware"
	"assignment-tracker/backend/internal/chat"
	"assignment-tracker/backend/internal/service"
)

// ChatHandler 实时聊天通道入口
type ChatHandler struct {
	authSvc    service.AuthService
	dispatcher chat.Dispatcher
	hub        *chat.Hub
	cfg        *config.Config
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// NewChatHandler 创建 ChatHandler
// 允许的 Origin 与 CORS 配置一致；无 Origin 头（非浏览器客户端）放行
func NewChatHandler(authSvc service.AuthService, dispatcher chat.Dispatcher, hub *chat.Hub, cfg *config.Config, logger *zap.Logger) *ChatHandler {
	origins := make(map[string]bool, len(cfg.Server.CORS.AllowOrigins))
	for _, o := range cfg.Server.CORS.AllowOrigins {
		origins[strings.TrimRight(o, "/")] = true
	}

	return &ChatHandler{
		authSvc:    authSvc,
		dispatcher: dispatcher,
		hub:        hub,
		cfg:        cfg,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

// Connect 升级为 websocket 连接
// GET /api/v1/ws?token=...
func (h *ChatHandler) Connect(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	// 发送者姓名以服务端记录为准
	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	logger := h.logger.With(zap.String("request_id", middleware.RequestIDFrom(c)))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已写入 HTTP 错误响应
		logger.Warn("websocket 升级失败", zap.String("user_id", userID), zap.Error(err))
		return
	}

	client := chat.NewClient(conn, h.hub, h.dispatcher, user.ID, user.Name, &h.cfg.Chat, logger)
	if err := client.Start(); err != nil {
		logger.Warn("聊天连接登记失败", zap.String("user_id", userID), zap.Error(err))
	}
}
