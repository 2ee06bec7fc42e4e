package handler

import (
	"staff-attendance/config"
	"staff-attendance/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Attendance *AttendanceHandler
	Leave      *LeaveHandler
	Schedule   *ScheduleHandler
	Cv         *CvHandler
	Stats      *StatsHandler
	Health     *HealthHandler
}

// NewHandler 创建 Handler 聚合；checks 为健康检查依赖（数据库 / Redis）
func NewHandler(cfg *config.Config, svc *service.Service, checks ...HealthCheck) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, newRefreshCookie(cfg)),
		User:       NewUserHandler(svc.User),
		Attendance: NewAttendanceHandler(svc.Attendance, svc.Export),
		Leave:      NewLeaveHandler(svc.Leave),
		Schedule:   NewScheduleHandler(svc.Schedule),
		Cv:         NewCvHandler(svc.Cv),
		Stats:      NewStatsHandler(svc.Stats),
		Health:     NewHealthHandler(checks...),
	}
}
