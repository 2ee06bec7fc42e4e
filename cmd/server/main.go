package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"staff-attendance/config"
	"staff-attendance/internal/api/handler"
	"staff-attendance/internal/api/middleware"
	"staff-attendance/internal/api/router"
	"staff-attendance/internal/repository"
	"staff-attendance/internal/service"
	"staff-attendance/internal/storage"
	"staff-attendance/pkg/database"
	"staff-attendance/pkg/jwt"
	applogger "staff-attendance/pkg/logger"
	"staff-attendance/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、登录限流与统计缓存将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. JWT 与简历文件存储
	jwtMgr := jwt.NewManager(&cfg.Auth)
	blobs, err := storage.NewLocalStore(cfg.Storage.CVDir, logger)
	if err != nil {
		logger.Fatal("初始化简历存储失败", zap.Error(err))
	}

	if err := middleware.RegisterValidators(); err != nil {
		logger.Fatal("注册参数校验规则失败", zap.Error(err))
	}

	// 6. 依赖注入: Repository → Service → Handler
	// Redis 不可用时显式传 nil 接口，避免 typed-nil
	deps := service.Deps{
		Config: cfg,
		Repo:   repository.NewRepository(db),
		JWT:    jwtMgr,
		Blobs:  blobs,
		Logger: logger,
	}
	rd := router.Deps{Config: cfg, JWT: jwtMgr, Logger: logger}
	checks := []handler.HealthCheck{
		{Name: "database", Required: true, Ping: sqlDB.PingContext},
	}
	if rdb != nil {
		deps.Blacklist = rdb
		deps.Cache = rdb
		rd.Blacklist = rdb
		rd.Limiter = rdb
		checks = append(checks, handler.HealthCheck{Name: "redis", Ping: rdb.Ping})
	}

	svc := service.NewService(deps)
	rd.Handler = handler.NewHandler(cfg, svc, checks...)

	// 7. 初始化路由
	engine := router.Setup(rd)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("关闭 Redis 连接失败", zap.Error(err))
		}
	}

	logger.Info("服务器已关闭")
}
