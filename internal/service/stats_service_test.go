package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"staff-attendance/internal/repository"
)

func TestStatsService_Overview_CachesResult(t *testing.T) {
	repo, m := newTestRepos()
	m.stats.totals = &repository.StatsTotals{TotalUsers: 10, PendingLeaveRequests: 2}
	cache := newMockCache()
	svc := NewStatsService(repo, cache, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview 失败: %v", err)
	}
	second, _ := svc.Overview(ctx)
	if m.stats.calls != 1 {
		t.Errorf("第二次应命中缓存，实际查库 %d 次", m.stats.calls)
	}
	if first.TotalUsers != 10 || second.PendingLeaveRequests != 2 {
		t.Errorf("统计结果不正确: %+v / %+v", first, second)
	}

	svc.Invalidate(ctx)
	svc.Overview(ctx)
	if m.stats.calls != 2 {
		t.Errorf("失效后应重新查库，实际 %d 次", m.stats.calls)
	}
}

func TestStatsService_Overview_CacheErrorDegrades(t *testing.T) {
	repo, m := newTestRepos()
	m.stats.totals = &repository.StatsTotals{TotalUsers: 3}
	cache := newMockCache()
	cache.err = errors.New("connection refused")
	svc := NewStatsService(repo, cache, zap.NewNop())

	resp, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("缓存故障不应影响读取: %v", err)
	}
	if resp.TotalUsers != 3 {
		t.Errorf("期望 3，实际 %d", resp.TotalUsers)
	}
}

func TestStatsService_DepartmentSummary(t *testing.T) {
	repo, m := newTestRepos()
	m.stats.rows = []repository.DepartmentRow{{Department: "Math", MemberCount: 4, PresentToday: 3, OnLeaveToday: 1}}
	svc := NewStatsService(repo, nil, zap.NewNop())

	rows, err := svc.DepartmentSummary(context.Background())
	if err != nil {
		t.Fatalf("DepartmentSummary 失败: %v", err)
	}
	if len(rows) != 1 || rows[0].Department != "Math" || rows[0].OnLeaveToday != 1 {
		t.Errorf("汇总不正确: %+v", rows)
	}
}
