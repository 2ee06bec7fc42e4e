package dto

// ── 请假模块 DTO ──

// SubmitLeaveRequest 提交请假请求
type SubmitLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required,oneof=sick vacation personal"`
	StartDate string `json:"start_date" binding:"required,ymd"`
	EndDate   string `json:"end_date"   binding:"required,ymd"`
	Reason    string `json:"reason"     binding:"required,max=1000"`
}

// RejectLeaveRequest 驳回请假请求；reason 的非空校验在 service 层完成
type RejectLeaveRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// LeaveListRequest 请假列表查询参数
type LeaveListRequest struct {
	PaginationRequest
	Status     string `form:"status"     binding:"omitempty,oneof=pending approved rejected"`
	Department string `form:"department" binding:"omitempty,max=100"`
}

// MyLeaveRequest 本人请假列表查询参数
type MyLeaveRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// LeaveResponse 请假申请响应
type LeaveResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	UserName        string `json:"user_name,omitempty"`
	Department      string `json:"department,omitempty"`
	LeaveType       string `json:"leave_type"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Reason          string `json:"reason"`
	Status          string `json:"status"`
	RespondedBy     string `json:"responded_by,omitempty"`
	RespondedAt     string `json:"responded_at,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	CreatedAt       string `json:"created_at"`
}
