package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"assignment-tracker/backend/config"
	"assignment-tracker/backend/internal/api/handler"
	"assignment-tracker/backend/internal/api/middleware"
	"assignment-tracker/backend/internal/dto"
	"assignment-tracker/backend/pkg/jwt"
	"assignment-tracker/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	// 自定义校验规则
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			return nil, err
		}
	}

	rl := cfg.Server.RateLimit
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, "auth", rl.Auth, rl.Window, logger))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 实时聊天通道
			authorized.GET("/ws", middleware.RateLimit(rdb, "ws", rl.Connect, rl.Window, logger), h.Chat.Connect)

			// 课程模块（权限由 Service 层的权限判定负责）
			courses := authorized.Group("/courses")
			{
				courses.POST("", h.Course.Create)
				courses.GET("", h.Course.List)
				courses.GET("/:id", h.Course.Get)
				courses.PUT("/:id", h.Course.Update)
				courses.DELETE("/:id", h.Course.Delete)
				courses.POST("/:id/enroll", h.Course.Enroll)
				courses.POST("/:id/leave", h.Course.Leave)
				courses.POST("/:id/resources", h.Course.CreateResource)
				courses.GET("/:id/resources", h.Course.ListResources)
				courses.GET("/:id/messages", h.Course.ListMessages)
			}

			// 作业模块
			assignments := authorized.Group("/assignments")
			{
				assignments.POST("", h.Assignment.Create)
				assignments.GET("", h.Assignment.List)
				assignments.GET("/:id", h.Assignment.Get)
				assignments.PUT("/:id", h.Assignment.Update)
				assignments.DELETE("/:id", h.Assignment.Delete)
				assignments.POST("/:id/submit", middleware.RateLimit(rdb, "submit", rl.Submit, rl.Window, logger), h.Assignment.Submit)
				assignments.PUT("/:id/grade", h.Assignment.Grade)
				assignments.GET("/:id/export", h.Export.ExportSubmissions)
			}
		}
	}

	return r, nil
}
