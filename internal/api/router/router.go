package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"staff-attendance/config"
	"staff-attendance/internal/api/handler"
	"staff-attendance/internal/api/middleware"
	"staff-attendance/internal/permission"
	"staff-attendance/pkg/jwt"
)

const cvUploadPath = "/api/v1/cv/upload"

// Deps 路由依赖；Blacklist 与 Limiter 为 nil 时相应功能降级
type Deps struct {
	Config    *config.Config
	Handler   *handler.Handler
	JWT       *jwt.Manager
	Blacklist middleware.BlacklistChecker
	Limiter   middleware.RateLimiter
	Logger    *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	cfg, h := d.Config, d.Handler
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	// 简历上传放宽至 max_cv_size，额外 64KB 留给 multipart 边界
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit, map[string]int64{
		cvUploadPath: cfg.Storage.MaxCVSize + 64<<10,
	}))

	// ── 健康检查 / 指标 ──
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.JWTAuth(d.JWT, d.Blacklist, d.Logger)
	need := middleware.RequirePermission
	anyOf := middleware.RequireAnyPermission

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		pub := v1.Group("/auth")
		{
			pub.POST("/login", middleware.RateLimit(d.Limiter, cfg.RateLimit.LoginPerMinute, time.Minute, d.Logger), h.Auth.Login)
			pub.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(auth)
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", need(permission.UserRead), h.User.ListUsers)
				users.POST("", need(permission.UserCreate), h.User.CreateUser)
				users.POST("/import", need(permission.UserImport), h.User.ImportUsers)
				users.GET("/:id", need(permission.UserRead), h.User.GetUser)
				users.PUT("/:id", need(permission.UserUpdate), h.User.UpdateUser)
				users.DELETE("/:id", need(permission.UserDelete), h.User.DeleteUser)
			}

			// 考勤模块
			authorized.GET("/attendance-today", anyOf(permission.AttendanceMark, permission.AttendanceReadAll), h.Attendance.Today)
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/mark", need(permission.AttendanceMark), h.Attendance.Mark)
				attendance.GET("", need(permission.AttendanceReadAll), h.Attendance.List)
				attendance.GET("/me", need(permission.AttendanceReadOwn), h.Attendance.MySummary)
				attendance.GET("/export", need(permission.AttendanceReadAll), h.Attendance.Export)
			}

			// 请假模块
			leave := authorized.Group("/leave")
			{
				leave.POST("", need(permission.LeaveSubmit), h.Leave.Submit)
				leave.GET("", need(permission.LeaveReview), h.Leave.List)
				leave.GET("/me", need(permission.LeaveReadOwn), h.Leave.ListMine)
				leave.POST("/:id/approve", need(permission.LeaveReview), h.Leave.Approve)
				leave.POST("/:id/reject", need(permission.LeaveReview), h.Leave.Reject)
			}

			// 课表模块
			schedules := authorized.Group("/schedules")
			{
				schedules.GET("", need(permission.ScheduleRead), h.Schedule.List)
				schedules.POST("", need(permission.ScheduleManage), h.Schedule.Create)
				schedules.GET("/ics", need(permission.ScheduleRead), h.Schedule.ExportICS)
				schedules.GET("/:id", need(permission.ScheduleRead), h.Schedule.Get)
				schedules.PUT("/:id", need(permission.ScheduleManage), h.Schedule.Update)
				schedules.DELETE("/:id", need(permission.ScheduleManage), h.Schedule.Delete)
			}

			// 简历模块（归属校验在 service 层）
			cv := authorized.Group("/cv")
			{
				cv.POST("/upload", need(permission.CvManageOwn), h.Cv.Upload)
				cv.GET("/download/:id", anyOf(permission.CvManageOwn, permission.CvReadAny), h.Cv.Download)
				cv.GET("/:userId", anyOf(permission.CvManageOwn, permission.CvReadAny), h.Cv.GetByUser)
				cv.DELETE("/:id", need(permission.CvManageOwn), h.Cv.Delete)
			}

			// 统计看板
			stats := authorized.Group("/stats")
			{
				stats.GET("", need(permission.StatsRead), h.Stats.Overview)
				stats.GET("/departments", need(permission.StatsRead), h.Stats.Departments)
			}
		}
	}

	return r
}
