package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"staff-attendance/internal/dto"
	"staff-attendance/internal/model"
)

func newTestLeaveService() (*leaveService, *testRepos) {
	repo, m := newTestRepos()
	stats := NewStatsService(repo, nil, zap.NewNop())
	svc := NewLeaveService(repo, stats, zap.NewNop()).(*leaveService)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc, m
}

func submitSample(t *testing.T, svc *leaveService, userID string) *dto.LeaveResponse {
	t.Helper()
	resp, err := svc.Submit(context.Background(), userID, &dto.SubmitLeaveRequest{
		LeaveType: model.LeaveTypeSick,
		StartDate: "2024-05-06",
		EndDate:   "2024-05-08",
		Reason:    "flu",
	})
	if err != nil {
		t.Fatalf("提交请假失败: %v", err)
	}
	return resp
}

func TestLeaveService_Submit_Pending(t *testing.T) {
	svc, _ := newTestLeaveService()
	resp := submitSample(t, svc, "s1")
	if resp.Status != model.LeaveStatusPending {
		t.Errorf("新申请应为 pending，实际 %s", resp.Status)
	}
}

func TestLeaveService_Submit_Validation(t *testing.T) {
	svc, m := newTestLeaveService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.SubmitLeaveRequest
		want error
	}{
		{"end before start", dto.SubmitLeaveRequest{LeaveType: model.LeaveTypeSick, StartDate: "2024-05-08", EndDate: "2024-05-06", Reason: "x"}, ErrInvalidDateRange},
		{"blank reason", dto.SubmitLeaveRequest{LeaveType: model.LeaveTypeSick, StartDate: "2024-05-06", EndDate: "2024-05-06", Reason: "   "}, ErrLeaveReasonRequired},
		{"bad type", dto.SubmitLeaveRequest{LeaveType: "holiday", StartDate: "2024-05-06", EndDate: "2024-05-06", Reason: "x"}, ErrInvalidLeaveType},
		{"bad date", dto.SubmitLeaveRequest{LeaveType: model.LeaveTypeSick, StartDate: "2024/05/06", EndDate: "2024-05-06", Reason: "x"}, ErrInvalidDate},
		{"century span", dto.SubmitLeaveRequest{LeaveType: model.LeaveTypeVacation, StartDate: "2024-01-01", EndDate: "2123-12-31", Reason: "x"}, ErrLeaveTooLong},
		{"367 days", dto.SubmitLeaveRequest{LeaveType: model.LeaveTypeVacation, StartDate: "2024-01-01", EndDate: "2025-01-01", Reason: "x"}, ErrLeaveTooLong},
	}
	for _, c := range cases {
		req := c.req
		if _, err := svc.Submit(ctx, "s1", &req); !errors.Is(err, c.want) {
			t.Errorf("%s: 期望 %v，实际 %v", c.name, c.want, err)
		}
	}
	if len(m.leave.reqs) != 0 {
		t.Error("校验失败不应写入任何申请")
	}
}

func TestLeaveService_Submit_MaxSpanAccepted(t *testing.T) {
	svc, _ := newTestLeaveService()

	// 2024 为闰年，整年恰好 366 天
	resp, err := svc.Submit(context.Background(), "s1", &dto.SubmitLeaveRequest{
		LeaveType: model.LeaveTypeVacation,
		StartDate: "2024-01-01",
		EndDate:   "2024-12-31",
		Reason:    "sabbatical",
	})
	if err != nil {
		t.Fatalf("366 天请假应被接受: %v", err)
	}
	if resp.Status != model.LeaveStatusPending {
		t.Errorf("新申请应为 pending，实际 %s", resp.Status)
	}
}

func TestLeaveService_Reject_ThenRejectAgainFails(t *testing.T) {
	svc, m := newTestLeaveService()
	ctx := context.Background()
	l3 := submitSample(t, svc, "s1")

	resp, err := svc.Reject(ctx, l3.ID, "h1", "insufficient notice")
	if err != nil {
		t.Fatalf("首次驳回失败: %v", err)
	}
	if resp.Status != model.LeaveStatusRejected || resp.RejectionReason != "insufficient notice" {
		t.Errorf("驳回结果不正确: %+v", resp)
	}

	if _, err := svc.Reject(ctx, l3.ID, "h1", "again"); !errors.Is(err, ErrLeaveNotPending) {
		t.Errorf("重复驳回期望 ErrLeaveNotPending，实际: %v", err)
	}
	if _, err := svc.Approve(ctx, l3.ID, "h1"); !errors.Is(err, ErrLeaveNotPending) {
		t.Errorf("驳回后批准期望 ErrLeaveNotPending，实际: %v", err)
	}

	stored := m.leave.reqs[l3.ID]
	if stored.Status != model.LeaveStatusRejected || *stored.RejectionReason != "insufficient notice" {
		t.Errorf("终态记录不应被修改: %+v", stored)
	}
}

func TestLeaveService_Reject_EmptyReasonStaysPending(t *testing.T) {
	svc, m := newTestLeaveService()
	l := submitSample(t, svc, "s1")
	reads, writes := m.leave.readCalls, m.leave.writeCalls

	if _, err := svc.Reject(context.Background(), l.ID, "h1", "  "); !errors.Is(err, ErrRejectReasonRequired) {
		t.Fatalf("期望 ErrRejectReasonRequired，实际: %v", err)
	}
	if m.leave.readCalls != reads || m.leave.writeCalls != writes {
		t.Error("理由为空时不应访问存储")
	}
	if m.leave.reqs[l.ID].Status != model.LeaveStatusPending {
		t.Errorf("申请应保持 pending，实际 %s", m.leave.reqs[l.ID].Status)
	}
}

func TestLeaveService_Approve_WritesLeaveAttendance(t *testing.T) {
	svc, m := newTestLeaveService()
	l := submitSample(t, svc, "s1")

	resp, err := svc.Approve(context.Background(), l.ID, "h1")
	if err != nil {
		t.Fatalf("批准失败: %v", err)
	}
	if resp.Status != model.LeaveStatusApproved || resp.RespondedBy != "h1" || resp.RespondedAt == "" {
		t.Errorf("批准结果不正确: %+v", resp)
	}
	if n := m.attendance.count("s1"); n != 3 {
		t.Fatalf("5/6~5/8 期望写入 3 天请假考勤，实际 %d", n)
	}
	for _, r := range m.attendance.records {
		if r.Status != model.AttendanceLeave {
			t.Errorf("期望状态 leave，实际 %s", r.Status)
		}
	}
}

func TestLeaveService_Approve_NotFound(t *testing.T) {
	svc, _ := newTestLeaveService()
	if _, err := svc.Approve(context.Background(), "missing", "h1"); !errors.Is(err, ErrLeaveNotFound) {
		t.Errorf("期望 ErrLeaveNotFound，实际: %v", err)
	}
}

func TestLeaveService_ListMine_FiltersByStatus(t *testing.T) {
	svc, _ := newTestLeaveService()
	ctx := context.Background()
	a := submitSample(t, svc, "s1")
	submitSample(t, svc, "s1")
	submitSample(t, svc, "s2")
	if _, err := svc.Approve(ctx, a.ID, "h1"); err != nil {
		t.Fatalf("批准失败: %v", err)
	}

	all, _ := svc.ListMine(ctx, "s1", "")
	if len(all) != 2 {
		t.Errorf("s1 期望 2 条，实际 %d", len(all))
	}
	pending, _ := svc.ListMine(ctx, "s1", model.LeaveStatusPending)
	if len(pending) != 1 {
		t.Errorf("s1 pending 期望 1 条，实际 %d", len(pending))
	}
}
