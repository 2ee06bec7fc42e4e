package dto

// StatsResponse 全局统计（head / admin 看板）
type StatsResponse struct {
	TotalUsers           int64 `json:"total_users"`
	ActiveUsers          int64 `json:"active_users"`
	AttendanceToday      int64 `json:"attendance_today"`
	PresentToday         int64 `json:"present_today"`
	AbsentToday          int64 `json:"absent_today"`
	LateToday            int64 `json:"late_today"`
	PendingLeaveRequests int64 `json:"pending_leave_requests"`
}

// DepartmentSummary 部门当日考勤汇总
type DepartmentSummary struct {
	Department   string `json:"department"`
	MemberCount  int64  `json:"member_count"`
	PresentToday int64  `json:"present_today"`
	AbsentToday  int64  `json:"absent_today"`
	LateToday    int64  `json:"late_today"`
	OnLeaveToday int64  `json:"on_leave_today"`
}
