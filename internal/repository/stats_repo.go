package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"staff-attendance/internal/model"
)

// StatsTotals 全局计数
type StatsTotals struct {
	TotalUsers           int64
	ActiveUsers          int64
	AttendanceToday      int64
	PresentToday         int64
	AbsentToday          int64
	LateToday            int64
	PendingLeaveRequests int64
}

// DepartmentRow 部门当日汇总行
type DepartmentRow struct {
	Department   string
	MemberCount  int64
	PresentToday int64
	AbsentToday  int64
	LateToday    int64
	OnLeaveToday int64
}

// StatsRepository 看板统计查询
type StatsRepository interface {
	Totals(ctx context.Context, day time.Time) (*StatsTotals, error)
	DepartmentSummary(ctx context.Context, day time.Time) ([]DepartmentRow, error)
}

// statsRepo StatsRepository 的 GORM 实现
type statsRepo struct {
	db *gorm.DB
}

// NewStatsRepo 创建 StatsRepository 实例
func NewStatsRepo(db *gorm.DB) StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) Totals(ctx context.Context, day time.Time) (*StatsTotals, error) {
	var t StatsTotals
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.User{}).Count(&t.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.User{}).
		Where("status = ?", model.UserStatusActive).
		Count(&t.ActiveUsers).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := db.Model(&model.AttendanceRecord{}).
		Select("status, COUNT(*) AS count").
		Where("date = ?", day).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		t.AttendanceToday += c.Count
		switch c.Status {
		case model.AttendancePresent:
			t.PresentToday = c.Count
		case model.AttendanceAbsent:
			t.AbsentToday = c.Count
		case model.AttendanceLate:
			t.LateToday = c.Count
		}
	}

	if err := db.Model(&model.LeaveRequest{}).
		Where("status = ?", model.LeaveStatusPending).
		Count(&t.PendingLeaveRequests).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

const departmentSummarySQL = `
SELECT u.department AS department,
       COUNT(*) AS member_count,
       COUNT(*) FILTER (WHERE a.status = 'present') AS present_today,
       COUNT(*) FILTER (WHERE a.status = 'absent')  AS absent_today,
       COUNT(*) FILTER (WHERE a.status = 'late')    AS late_today,
       COUNT(*) FILTER (WHERE EXISTS (
           SELECT 1 FROM leave_requests l
            WHERE l.user_id = u.user_id
              AND l.status = 'approved'
              AND ? BETWEEN l.start_date AND l.end_date
       )) AS on_leave_today
  FROM users u
  LEFT JOIN attendance_records a ON a.user_id = u.user_id AND a.date = ?
 WHERE u.deleted_at IS NULL
   AND u.status = 'active'
   AND u.department IS NOT NULL
 GROUP BY u.department
 ORDER BY u.department`

func (r *statsRepo) DepartmentSummary(ctx context.Context, day time.Time) ([]DepartmentRow, error) {
	var rows []DepartmentRow
	err := r.db.WithContext(ctx).
		Raw(departmentSummarySQL, day, day).
		Scan(&rows).Error
	return rows, err
}
