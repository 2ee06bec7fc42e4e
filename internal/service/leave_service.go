package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staff-attendance/internal/dto"
	"staff-attendance/internal/model"
	"staff-attendance/internal/repository"
	pkgerrors "staff-attendance/pkg/errors"
	"staff-attendance/pkg/metrics"
)

// ── 请假模块业务错误 ──

var (
	ErrLeaveNotFound        = errors.New("请假申请不存在")
	ErrLeaveNotPending      = errors.New("请假申请已处理，不能重复审批")
	ErrLeaveReasonRequired  = errors.New("请假事由不能为空")
	ErrRejectReasonRequired = errors.New("驳回理由不能为空")
	ErrInvalidLeaveType     = errors.New("请假类型只能为 sick、vacation 或 personal")
	ErrLeaveTooLong         = errors.New("单次请假不能超过 366 天")
)

// maxLeaveDays 单次请假覆盖的最大天数（含首尾），审批时逐日写考勤
const maxLeaveDays = 366

var validLeaveTypes = map[string]bool{
	model.LeaveTypeSick:     true,
	model.LeaveTypeVacation: true,
	model.LeaveTypePersonal: true,
}

// LeaveService 请假业务接口
//
// 状态流转：pending → approved | rejected，两者均为终态；
// 审批通过时在同一事务内把覆盖日期的考勤写为 leave。
type LeaveService interface {
	Submit(ctx context.Context, userID string, req *dto.SubmitLeaveRequest) (*dto.LeaveResponse, error)
	ListMine(ctx context.Context, userID, status string) ([]dto.LeaveResponse, error)
	List(ctx context.Context, req *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error)
	Approve(ctx context.Context, id, responderID string) (*dto.LeaveResponse, error)
	Reject(ctx context.Context, id, responderID, reason string) (*dto.LeaveResponse, error)
}

type leaveService struct {
	repo   *repository.Repository
	stats  StatsService
	logger *zap.Logger
	now    func() time.Time
}

// NewLeaveService 创建 LeaveService 实例
func NewLeaveService(repo *repository.Repository, stats StatsService, logger *zap.Logger) LeaveService {
	return &leaveService{repo: repo, stats: stats, logger: logger, now: time.Now}
}

// ────────────────────── Submit ──────────────────────

func (s *leaveService) Submit(ctx context.Context, userID string, req *dto.SubmitLeaveRequest) (*dto.LeaveResponse, error) {
	if !validLeaveTypes[req.LeaveType] {
		return nil, ErrInvalidLeaveType
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrLeaveReasonRequired
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}
	if end.Sub(start) >= maxLeaveDays*24*time.Hour {
		return nil, ErrLeaveTooLong
	}

	leave := &model.LeaveRequest{
		UserID:    userID,
		LeaveType: req.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    reason,
		Status:    model.LeaveStatusPending,
	}
	if err := s.repo.Leave.Create(ctx, leave); err != nil {
		s.logger.Error("创建请假申请失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.stats.Invalidate(ctx)
	s.logger.Info("请假申请已提交",
		zap.String("leave_request_id", leave.LeaveRequestID),
		zap.String("user_id", userID),
	)
	resp := toLeaveResponse(leave)
	return &resp, nil
}

// ────────────────────── ListMine / List ──────────────────────

func (s *leaveService) ListMine(ctx context.Context, userID, status string) ([]dto.LeaveResponse, error) {
	reqs, err := s.repo.Leave.ListByUser(ctx, userID, status)
	if err != nil {
		s.logger.Error("查询个人请假失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	list := make([]dto.LeaveResponse, 0, len(reqs))
	for i := range reqs {
		list = append(list, toLeaveResponse(&reqs[i]))
	}
	return list, nil
}

func (s *leaveService) List(ctx context.Context, req *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error) {
	filter := repository.LeaveFilter{Status: req.Status, Department: req.Department}
	reqs, total, err := s.repo.Leave.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询请假列表失败", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.LeaveResponse, 0, len(reqs))
	for i := range reqs {
		list = append(list, toLeaveResponse(&reqs[i]))
	}
	return list, total, nil
}

// ────────────────────── Approve / Reject ──────────────────────

func (s *leaveService) Approve(ctx context.Context, id, responderID string) (*dto.LeaveResponse, error) {
	return s.resolve(ctx, id, responderID, model.LeaveStatusApproved, nil)
}

func (s *leaveService) Reject(ctx context.Context, id, responderID, reason string) (*dto.LeaveResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrRejectReasonRequired
	}
	return s.resolve(ctx, id, responderID, model.LeaveStatusRejected, &reason)
}

func (s *leaveService) resolve(ctx context.Context, id, responderID, status string, reason *string) (*dto.LeaveResponse, error) {
	leave, err := s.repo.Leave.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveNotFound
		}
		s.logger.Error("查询请假申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !leave.IsPending() {
		return nil, ErrLeaveNotPending
	}

	now := s.now()

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}
	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()
	txRepo := s.repo.WithTx(tx)

	// 条件更新：并发审批只有一方命中
	if err := txRepo.Leave.Resolve(ctx, id, status, responderID, reason, now); err != nil {
		rollback()
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrLeaveNotPending
		}
		s.logger.Error("更新请假状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if status == model.LeaveStatusApproved {
		for day := leave.StartDate; leave.Covers(day); day = day.AddDate(0, 0, 1) {
			rec := &model.AttendanceRecord{
				UserID:       leave.UserID,
				Date:         day,
				Status:       model.AttendanceLeave,
				MarkedAt:     now,
				MarkedBy:     &responderID,
				MarkedByRole: model.RoleHead,
			}
			if err := txRepo.Attendance.Upsert(ctx, rec); err != nil {
				rollback()
				s.logger.Error("写入请假考勤失败，事务回滚",
					zap.String("id", id), zap.String("date", day.Format(dateLayout)), zap.Error(err))
				return nil, err
			}
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	metrics.LeaveDecisions.WithLabelValues(status).Inc()
	s.stats.Invalidate(ctx)
	s.logger.Info("请假申请已审批",
		zap.String("leave_request_id", id),
		zap.String("status", status),
		zap.String("responder", responderID),
	)

	leave.Status = status
	leave.RespondedBy = &responderID
	leave.RespondedAt = &now
	leave.RejectionReason = reason
	resp := toLeaveResponse(leave)
	return &resp, nil
}

func toLeaveResponse(l *model.LeaveRequest) dto.LeaveResponse {
	resp := dto.LeaveResponse{
		ID:              l.LeaveRequestID,
		UserID:          l.UserID,
		LeaveType:       l.LeaveType,
		StartDate:       l.StartDate.Format(dateLayout),
		EndDate:         l.EndDate.Format(dateLayout),
		Reason:          l.Reason,
		Status:          l.Status,
		RespondedBy:     deref(l.RespondedBy),
		RespondedAt:     formatTime(l.RespondedAt),
		RejectionReason: deref(l.RejectionReason),
		CreatedAt:       formatTime(&l.CreatedAt),
	}
	if l.User != nil {
		resp.UserName = l.User.Name
		resp.Department = l.User.DepartmentName()
	}
	return resp
}
