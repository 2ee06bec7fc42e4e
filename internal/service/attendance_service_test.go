package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"staff-attendance/internal/dto"
	"staff-attendance/internal/model"
	"staff-attendance/internal/permission"
)

func newTestAttendanceService() (*attendanceService, *testRepos) {
	repo, m := newTestRepos()
	stats := NewStatsService(repo, nil, zap.NewNop())
	svc := NewAttendanceService(repo, stats, zap.NewNop()).(*attendanceService)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	return svc, m
}

func TestAttendanceService_Mark_OverwritesSameDay(t *testing.T) {
	svc, m := newTestAttendanceService()
	seedUser(m.user, "m1", model.RoleMazer)
	seedUser(m.user, "u7", model.RoleTeacher)
	ctx := context.Background()

	if _, err := svc.Mark(ctx, "m1", model.RoleMazer, &dto.MarkAttendanceRequest{UserID: "u7", Date: "2024-05-01", Status: model.AttendancePresent}); err != nil {
		t.Fatalf("首次标记失败: %v", err)
	}
	resp, err := svc.Mark(ctx, "m1", model.RoleMazer, &dto.MarkAttendanceRequest{UserID: "u7", Date: "2024-05-01", Status: model.AttendanceAbsent})
	if err != nil {
		t.Fatalf("再次标记失败: %v", err)
	}

	if n := m.attendance.count("u7"); n != 1 {
		t.Fatalf("同一天应只有 1 条记录，实际 %d", n)
	}
	rec, _ := m.attendance.GetByUserAndDate(ctx, "u7", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if rec.Status != model.AttendanceAbsent {
		t.Errorf("期望状态 absent，实际 %s", rec.Status)
	}
	if resp.Status != model.AttendanceAbsent || resp.Date != "2024-05-01" {
		t.Errorf("响应不正确: %+v", resp)
	}
	if resp.MarkedBy != "m1" || resp.MarkedByRole != model.RoleMazer {
		t.Errorf("应记录标记人: %+v", resp)
	}
}

func TestAttendanceService_Mark_DefaultsToToday(t *testing.T) {
	svc, m := newTestAttendanceService()
	seedUser(m.user, "s1", model.RoleStaff)

	resp, err := svc.Mark(context.Background(), "a1", model.RoleAssistant, &dto.MarkAttendanceRequest{UserID: "s1", Status: model.AttendanceLate})
	if err != nil {
		t.Fatalf("标记失败: %v", err)
	}
	if resp.Date != "2024-05-01" {
		t.Errorf("期望默认当天 2024-05-01，实际 %s", resp.Date)
	}
}

func TestAttendanceService_Mark_WrongTargetRole(t *testing.T) {
	svc, m := newTestAttendanceService()
	seedUser(m.user, "s1", model.RoleStaff)
	seedUser(m.user, "t1", model.RoleTeacher)
	ctx := context.Background()

	_, err := svc.Mark(ctx, "m1", model.RoleMazer, &dto.MarkAttendanceRequest{UserID: "s1", Status: model.AttendancePresent})
	if !errors.Is(err, ErrCannotMarkTarget) {
		t.Errorf("mazer 标记 staff 期望 ErrCannotMarkTarget，实际: %v", err)
	}
	_, err = svc.Mark(ctx, "a1", model.RoleAssistant, &dto.MarkAttendanceRequest{UserID: "t1", Status: model.AttendancePresent})
	if !errors.Is(err, ErrCannotMarkTarget) {
		t.Errorf("assistant 标记 teacher 期望 ErrCannotMarkTarget，实际: %v", err)
	}
	if len(m.attendance.records) != 0 {
		t.Error("被拒绝的标记不应写入记录")
	}
}

func TestAttendanceService_Mark_ForbiddenRole(t *testing.T) {
	svc, m := newTestAttendanceService()
	seedUser(m.user, "t1", model.RoleTeacher)

	_, err := svc.Mark(context.Background(), "h1", model.RoleHead, &dto.MarkAttendanceRequest{UserID: "t1", Status: model.AttendancePresent})
	if !errors.Is(err, permission.ErrForbidden) {
		t.Errorf("head 标记期望 ErrForbidden，实际: %v", err)
	}
}

func TestAttendanceService_Mark_Validation(t *testing.T) {
	svc, m := newTestAttendanceService()
	seedUser(m.user, "t1", model.RoleTeacher)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.MarkAttendanceRequest
		want error
	}{
		{"bad date", dto.MarkAttendanceRequest{UserID: "t1", Date: "01/05/2024", Status: model.AttendancePresent}, ErrInvalidDate},
		{"leave status", dto.MarkAttendanceRequest{UserID: "t1", Status: model.AttendanceLeave}, ErrInvalidAttendanceStatus},
		{"unknown user", dto.MarkAttendanceRequest{UserID: "nobody", Status: model.AttendancePresent}, ErrUserNotFound},
	}
	for _, c := range cases {
		req := c.req
		if _, err := svc.Mark(ctx, "m1", model.RoleMazer, &req); !errors.Is(err, c.want) {
			t.Errorf("%s: 期望 %v，实际 %v", c.name, c.want, err)
		}
	}
}

func TestAttendanceService_Mark_InactiveTarget(t *testing.T) {
	svc, m := newTestAttendanceService()
	u := seedUser(m.user, "t1", model.RoleTeacher)
	u.Status = model.UserStatusInactive

	_, err := svc.Mark(context.Background(), "m1", model.RoleMazer, &dto.MarkAttendanceRequest{UserID: "t1", Status: model.AttendancePresent})
	if !errors.Is(err, ErrTargetInactive) {
		t.Errorf("期望 ErrTargetInactive，实际: %v", err)
	}
}

func TestAttendanceService_Today_MazerSeesTeachersOnly(t *testing.T) {
	svc, m := newTestAttendanceService()
	seedUser(m.user, "t1", model.RoleTeacher)
	seedUser(m.user, "t2", model.RoleTeacher)
	seedUser(m.user, "s1", model.RoleStaff)
	ctx := context.Background()

	if _, err := svc.Mark(ctx, "m1", model.RoleMazer, &dto.MarkAttendanceRequest{UserID: "t1", Status: model.AttendancePresent}); err != nil {
		t.Fatalf("标记失败: %v", err)
	}

	board, err := svc.Today(ctx, model.RoleMazer, &dto.AttendanceTodayRequest{})
	if err != nil {
		t.Fatalf("Today 失败: %v", err)
	}
	if len(board.Items) != 2 {
		t.Fatalf("期望 2 名教师，实际 %d", len(board.Items))
	}
	marked := map[string]string{}
	for _, it := range board.Items {
		if it.Role != model.RoleTeacher {
			t.Errorf("mazer 看板不应出现 %s", it.Role)
		}
		marked[it.UserID] = it.Status
	}
	if marked["t1"] != model.AttendancePresent || marked["t2"] != "" {
		t.Errorf("标记状态不正确: %v", marked)
	}
}

func TestAttendanceService_Today_HeadSeesAll(t *testing.T) {
	svc, m := newTestAttendanceService()
	seedUser(m.user, "t1", model.RoleTeacher)
	seedUser(m.user, "s1", model.RoleStaff)
	seedUser(m.user, "a1", model.RoleAdmin)

	board, err := svc.Today(context.Background(), model.RoleHead, &dto.AttendanceTodayRequest{})
	if err != nil {
		t.Fatalf("Today 失败: %v", err)
	}
	if len(board.Items) != 2 {
		t.Errorf("head 期望看到全部 2 人，实际 %d", len(board.Items))
	}
	for _, it := range board.Items {
		if it.Role == model.RoleAdmin {
			t.Error("管理员不应出现在考勤看板")
		}
	}
}

func TestAttendanceService_MySummary_CountsMonth(t *testing.T) {
	svc, m := newTestAttendanceService()
	seedUser(m.user, "t1", model.RoleTeacher)
	ctx := context.Background()

	marks := map[string]string{
		"2024-05-01": model.AttendancePresent,
		"2024-05-02": model.AttendanceLate,
		"2024-05-03": model.AttendanceAbsent,
		"2024-04-30": model.AttendancePresent, // 上月，不计入
	}
	for date, status := range marks {
		if _, err := svc.Mark(ctx, "m1", model.RoleMazer, &dto.MarkAttendanceRequest{UserID: "t1", Date: date, Status: status}); err != nil {
			t.Fatalf("标记 %s 失败: %v", date, err)
		}
	}

	sum, err := svc.MySummary(ctx, "t1", "2024-05")
	if err != nil {
		t.Fatalf("MySummary 失败: %v", err)
	}
	if sum.Total != 3 || sum.Present != 1 || sum.Late != 1 || sum.Absent != 1 {
		t.Errorf("汇总不正确: %+v", sum)
	}

	if _, err := svc.MySummary(ctx, "t1", "May"); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("期望 ErrInvalidMonth，实际: %v", err)
	}
}

func TestAttendanceService_List_RejectsInvertedRange(t *testing.T) {
	svc, _ := newTestAttendanceService()
	_, _, err := svc.List(context.Background(), &dto.AttendanceListRequest{From: "2024-05-10", To: "2024-05-01"})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际: %v", err)
	}
}
