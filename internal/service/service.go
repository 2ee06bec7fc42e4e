package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"staff-attendance/config"
	"staff-attendance/internal/repository"
	"staff-attendance/internal/storage"
	"staff-attendance/pkg/jwt"
)

// TokenBlacklist Token 黑名单（Redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Cache JSON 缓存（Redis 实现），未命中返回 redis.ErrCacheMiss
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Deps Service 层依赖；Blacklist 与 Cache 可为 nil（Redis 不可用时降级）
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	JWT       *jwt.Manager
	Blobs     storage.BlobStore
	Blacklist TokenBlacklist
	Cache     Cache
	Logger    *zap.Logger
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Attendance AttendanceService
	Leave      LeaveService
	Schedule   ScheduleService
	Cv         CvService
	Stats      StatsService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	stats := NewStatsService(d.Repo, d.Cache, d.Logger)
	return &Service{
		Auth:       NewAuthService(d.Config, d.Repo, d.JWT, d.Blacklist, d.Logger),
		User:       NewUserService(d.Repo, d.Logger),
		Attendance: NewAttendanceService(d.Repo, stats, d.Logger),
		Leave:      NewLeaveService(d.Repo, stats, d.Logger),
		Schedule:   NewScheduleService(d.Repo, d.Logger),
		Cv:         NewCvService(d.Repo, d.Blobs, d.Config.Storage.MaxCVSize, d.Logger),
		Stats:      stats,
		Export:     NewExportService(d.Repo, d.Logger),
	}
}

// 日期工具

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
	timeLayout  = time.RFC3339
)

// today 返回服务器本地日期（UTC 零点表示，与 DATE 列一致）
func today(now time.Time) time.Time {
	d, _ := time.Parse(dateLayout, now.Format(dateLayout))
	return d
}

// parseDate 解析 YYYY-MM-DD
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
