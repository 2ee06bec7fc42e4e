package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"staff-attendance/internal/dto"
	"staff-attendance/internal/repository"
	"staff-attendance/pkg/metrics"
	"staff-attendance/pkg/redis"
)

const (
	statsCacheKey = "stats:overview"
	statsCacheTTL = 30 * time.Second
)

// StatsService 看板统计业务接口
type StatsService interface {
	Overview(ctx context.Context) (*dto.StatsResponse, error)
	DepartmentSummary(ctx context.Context) ([]dto.DepartmentSummary, error)
	// Invalidate 丢弃统计缓存，写操作后调用
	Invalidate(ctx context.Context)
}

type statsService struct {
	repo   *repository.Repository
	cache  Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewStatsService 创建 StatsService 实例；cache 为 nil 时直接查库
func NewStatsService(repo *repository.Repository, cache Cache, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, cache: cache, logger: logger, now: time.Now}
}

func (s *statsService) Overview(ctx context.Context) (*dto.StatsResponse, error) {
	if s.cache != nil {
		var cached dto.StatsResponse
		err := s.cache.GetJSON(ctx, statsCacheKey, &cached)
		switch {
		case err == nil:
			metrics.CacheResults.WithLabelValues("hit").Inc()
			return &cached, nil
		case errors.Is(err, redis.ErrCacheMiss):
			metrics.CacheResults.WithLabelValues("miss").Inc()
		default:
			metrics.CacheResults.WithLabelValues("error").Inc()
			s.logger.Warn("读取统计缓存失败，降级查库", zap.Error(err))
		}
	}

	totals, err := s.repo.Stats.Totals(ctx, today(s.now()))
	if err != nil {
		s.logger.Error("查询统计失败", zap.Error(err))
		return nil, err
	}
	resp := &dto.StatsResponse{
		TotalUsers:           totals.TotalUsers,
		ActiveUsers:          totals.ActiveUsers,
		AttendanceToday:      totals.AttendanceToday,
		PresentToday:         totals.PresentToday,
		AbsentToday:          totals.AbsentToday,
		LateToday:            totals.LateToday,
		PendingLeaveRequests: totals.PendingLeaveRequests,
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, statsCacheKey, resp, statsCacheTTL); err != nil {
			s.logger.Warn("写入统计缓存失败", zap.Error(err))
		}
	}
	return resp, nil
}

func (s *statsService) DepartmentSummary(ctx context.Context) ([]dto.DepartmentSummary, error) {
	rows, err := s.repo.Stats.DepartmentSummary(ctx, today(s.now()))
	if err != nil {
		s.logger.Error("查询部门汇总失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.DepartmentSummary, 0, len(rows))
	for _, r := range rows {
		result = append(result, dto.DepartmentSummary{
			Department:   r.Department,
			MemberCount:  r.MemberCount,
			PresentToday: r.PresentToday,
			AbsentToday:  r.AbsentToday,
			LateToday:    r.LateToday,
			OnLeaveToday: r.OnLeaveToday,
		})
	}
	return result, nil
}

func (s *statsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("清除统计缓存失败", zap.Error(err))
	}
}
