package dto

// ── 考勤模块 DTO ──

// MarkAttendanceRequest 标记考勤请求；date 为空表示当天
type MarkAttendanceRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Date   string `json:"date"    binding:"omitempty,ymd"`
	Status string `json:"status"  binding:"required,oneof=present absent late"`
}

// AttendanceTodayRequest 今日考勤看板查询参数
type AttendanceTodayRequest struct {
	Role       string `form:"role"       binding:"omitempty,oneof=head mazer assistant teacher staff"`
	Department string `form:"department" binding:"omitempty,max=100"`
}

// AttendanceListRequest 考勤历史查询参数
type AttendanceListRequest struct {
	PaginationRequest
	UserID     string `form:"user_id"    binding:"omitempty,uuid"`
	Department string `form:"department" binding:"omitempty,max=100"`
	Status     string `form:"status"     binding:"omitempty,oneof=present absent late leave"`
	From       string `form:"from"       binding:"omitempty,ymd"`
	To         string `form:"to"         binding:"omitempty,ymd"`
}

// AttendanceExportRequest 考勤导出参数
type AttendanceExportRequest struct {
	Department string `form:"department" binding:"omitempty,max=100"`
	From       string `form:"from"       binding:"required,ymd"`
	To         string `form:"to"         binding:"required,ymd"`
}

// MySummaryRequest 个人月度汇总参数；month 为空表示当月
type MySummaryRequest struct {
	Month string `form:"month" binding:"omitempty,ym"`
}

// AttendanceResponse 考勤记录响应
type AttendanceResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name,omitempty"`
	Department   string `json:"department,omitempty"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	MarkedAt     string `json:"marked_at"`
	MarkedBy     string `json:"marked_by,omitempty"`
	MarkedByRole string `json:"marked_by_role,omitempty"`
}

// AttendanceTodayItem 今日看板中的一行，未标记时 status 为空
type AttendanceTodayItem struct {
	UserID     string `json:"user_id"`
	UniqueID   string `json:"unique_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Status     string `json:"status,omitempty"`
	MarkedAt   string `json:"marked_at,omitempty"`
}

// AttendanceTodayResponse 今日考勤看板
type AttendanceTodayResponse struct {
	Date  string                `json:"date"`
	Items []AttendanceTodayItem `json:"items"`
}

// MySummaryResponse 个人月度考勤汇总
type MySummaryResponse struct {
	Month   string               `json:"month"`
	Present int                  `json:"present"`
	Absent  int                  `json:"absent"`
	Late    int                  `json:"late"`
	Leave   int                  `json:"leave"`
	Total   int                  `json:"total"`
	Records []AttendanceResponse `json:"records"`
}
