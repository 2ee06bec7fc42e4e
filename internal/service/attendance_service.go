package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staff-attendance/internal/dto"
	"staff-attendance/internal/model"
	"staff-attendance/internal/permission"
	"staff-attendance/internal/repository"
	"staff-attendance/pkg/metrics"
)

// ── 考勤模块业务错误 ──

var (
	ErrInvalidDate             = errors.New("日期格式应为 YYYY-MM-DD")
	ErrInvalidMonth            = errors.New("月份格式应为 YYYY-MM")
	ErrInvalidDateRange        = errors.New("结束日期不能早于开始日期")
	ErrInvalidAttendanceStatus = errors.New("考勤状态只能为 present、absent 或 late")
	ErrTargetInactive          = errors.New("目标用户已停用")
	ErrCannotMarkTarget        = errors.New("无权为该角色的用户标记考勤")
)

var markableStatuses = map[string]bool{
	model.AttendancePresent: true,
	model.AttendanceAbsent:  true,
	model.AttendanceLate:    true,
}

// AttendanceService 考勤业务接口
type AttendanceService interface {
	// Mark 为目标用户写入某日考勤；同一 (user, date) 重复标记覆盖旧值
	Mark(ctx context.Context, markerID, markerRole string, req *dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error)
	// Today 今日考勤看板：启用用户 × 今日记录，未标记的 status 为空
	Today(ctx context.Context, callerRole string, req *dto.AttendanceTodayRequest) (*dto.AttendanceTodayResponse, error)
	List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error)
	MySummary(ctx context.Context, userID, month string) (*dto.MySummaryResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	stats  StatsService
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, stats StatsService, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, stats: stats, logger: logger, now: time.Now}
}

// ────────────────────── Mark ──────────────────────

func (s *attendanceService) Mark(ctx context.Context, markerID, markerRole string, req *dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error) {
	// 1. 参数校验（不访问存储）
	if !markableStatuses[req.Status] {
		return nil, ErrInvalidAttendanceStatus
	}
	now := s.now()
	day := today(now)
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		day = d
	}
	if err := permission.Check(markerRole, permission.AttendanceMark); err != nil {
		return nil, err
	}

	// 2. 目标用户校验
	target, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询目标用户失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}
	if !target.IsActive() {
		return nil, ErrTargetInactive
	}
	if !permission.CanMark(markerRole, target.Role) {
		return nil, ErrCannotMarkTarget
	}

	// 3. 单条 upsert
	record := &model.AttendanceRecord{
		UserID:       target.UserID,
		Date:         day,
		Status:       req.Status,
		MarkedAt:     now,
		MarkedBy:     &markerID,
		MarkedByRole: markerRole,
	}
	if err := s.repo.Attendance.Upsert(ctx, record); err != nil {
		s.logger.Error("写入考勤失败",
			zap.String("user_id", target.UserID),
			zap.String("date", day.Format(dateLayout)),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.AttendanceMarks.WithLabelValues(req.Status).Inc()
	s.stats.Invalidate(ctx)

	s.logger.Info("考勤已标记",
		zap.String("user_id", target.UserID),
		zap.String("date", day.Format(dateLayout)),
		zap.String("status", req.Status),
		zap.String("marker", markerID),
	)

	record.User = target
	resp := toAttendanceResponse(record)
	return &resp, nil
}

// ────────────────────── Today ──────────────────────

func (s *attendanceService) Today(ctx context.Context, callerRole string, req *dto.AttendanceTodayRequest) (*dto.AttendanceTodayResponse, error) {
	role := req.Role
	// 标记人只看自己可标记的角色
	if markable := permission.MarkableRole(callerRole); markable != "" {
		role = markable
	}

	day := today(s.now())
	users, err := s.repo.User.ListActive(ctx, role, req.Department)
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	records, err := s.repo.Attendance.ListByDate(ctx, day)
	if err != nil {
		s.logger.Error("查询今日考勤失败", zap.Error(err))
		return nil, err
	}

	byUser := make(map[string]*model.AttendanceRecord, len(records))
	for i := range records {
		byUser[records[i].UserID] = &records[i]
	}

	items := make([]dto.AttendanceTodayItem, 0, len(users))
	for i := range users {
		u := &users[i]
		// 管理员不参与考勤
		if u.Role == model.RoleAdmin {
			continue
		}
		item := dto.AttendanceTodayItem{
			UserID:     u.UserID,
			UniqueID:   u.UniqueID,
			Name:       u.Name,
			Role:       u.Role,
			Department: u.DepartmentName(),
		}
		if rec, ok := byUser[u.UserID]; ok {
			item.Status = rec.Status
			item.MarkedAt = formatTime(&rec.MarkedAt)
		}
		items = append(items, item)
	}

	return &dto.AttendanceTodayResponse{Date: day.Format(dateLayout), Items: items}, nil
}

// ────────────────────── List ──────────────────────

func (s *attendanceService) List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error) {
	filter := repository.AttendanceFilter{
		UserID:     req.UserID,
		Department: req.Department,
		Status:     req.Status,
	}
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return nil, 0, err
	}
	filter.From, filter.To = from, to

	records, total, err := s.repo.Attendance.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询考勤历史失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		list = append(list, toAttendanceResponse(&records[i]))
	}
	return list, total, nil
}

// ────────────────────── MySummary ──────────────────────

func (s *attendanceService) MySummary(ctx context.Context, userID, month string) (*dto.MySummaryResponse, error) {
	var start time.Time
	if month == "" {
		start, _ = time.Parse(monthLayout, s.now().Format(monthLayout))
	} else {
		m, err := time.Parse(monthLayout, month)
		if err != nil {
			return nil, ErrInvalidMonth
		}
		start = m
	}
	end := start.AddDate(0, 1, -1)

	records, err := s.repo.Attendance.ListByUserAndRange(ctx, userID, start, end)
	if err != nil {
		s.logger.Error("查询个人考勤失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := &dto.MySummaryResponse{
		Month:   start.Format(monthLayout),
		Records: make([]dto.AttendanceResponse, 0, len(records)),
	}
	for i := range records {
		switch records[i].Status {
		case model.AttendancePresent:
			resp.Present++
		case model.AttendanceAbsent:
			resp.Absent++
		case model.AttendanceLate:
			resp.Late++
		case model.AttendanceLeave:
			resp.Leave++
		}
		resp.Records = append(resp.Records, toAttendanceResponse(&records[i]))
	}
	resp.Total = len(records)
	return resp, nil
}

// ── 内部辅助方法 ──

// parseRange 解析可选的起止日期
func parseRange(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromStr != "" {
		d, err := parseDate(fromStr)
		if err != nil {
			return nil, nil, ErrInvalidDate
		}
		from = &d
	}
	if toStr != "" {
		d, err := parseDate(toStr)
		if err != nil {
			return nil, nil, ErrInvalidDate
		}
		to = &d
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, ErrInvalidDateRange
	}
	return from, to, nil
}

func toAttendanceResponse(r *model.AttendanceRecord) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		ID:           r.AttendanceID,
		UserID:       r.UserID,
		Date:         r.Date.Format(dateLayout),
		Status:       r.Status,
		MarkedAt:     formatTime(&r.MarkedAt),
		MarkedBy:     deref(r.MarkedBy),
		MarkedByRole: r.MarkedByRole,
	}
	if r.User != nil {
		resp.UserName = r.User.Name
		resp.Department = r.User.DepartmentName()
	}
	return resp
}
