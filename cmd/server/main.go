package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"assignment-tracker/backend/config"
	"assignment-tracker/backend/internal/api/handler"
	"assignment-tracker/backend/internal/api/router"
	"assignment-tracker/backend/internal/chat"
	"assignment-tracker/backend/internal/repository"
	"assignment-tracker/backend/internal/service"
	"assignment-tracker/backend/pkg/database"
	"assignment-tracker/backend/pkg/jwt"
	applogger "assignment-tracker/backend/pkg/logger"
	"assignment-tracker/backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "配置文件路径，留空时查找 ./config/config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()

	if err != nil {
		logger.Error("服务异常退出", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run 装配依赖并阻塞到 ctx 取消；返回前按 HTTP → 聊天连接 → Redis → 数据库 的顺序释放资源
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("应用启动中",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// ── 存储 ──
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	// Redis 可选：不可用时登出黑名单与限流降级放行
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 不可用，降级运行", zap.Error(err))
		rdb = nil
	}
	defer rdb.Close()

	// ── 依赖注入：Repository → Hub → Service → Handler ──
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	hub := chat.NewHub(repo.Message, cfg.Chat.MaxMessageLength, logger)
	// 已被 Hijack 的 websocket 连接不受 Shutdown 管理，须由 Hub 断开
	defer hub.Close()

	svc := service.NewService(cfg, repo, jwtMgr, rdb, hub, logger)
	h := handler.NewHandler(svc, hub, cfg, logger)

	engine, err := router.Setup(cfg, h, jwtMgr, rdb, logger)
	if err != nil {
		return fmt.Errorf("初始化路由失败: %w", err)
	}

	// WriteTimeout 覆盖 Excel 导出；websocket 升级后不再受这些超时约束
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务器异常: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("收到关闭信号，开始优雅关闭")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP 服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
	return nil
}
