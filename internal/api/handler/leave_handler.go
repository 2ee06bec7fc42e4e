package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"staff-attendance/internal/dto"
	"staff-attendance/internal/service"
	"staff-attendance/pkg/response"
)

// LeaveHandler 请假模块 HTTP 处理器
type LeaveHandler struct {
	leaveSvc service.LeaveService
}

// NewLeaveHandler 创建 LeaveHandler
func NewLeaveHandler(leaveSvc service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveSvc: leaveSvc}
}

// Submit 提交请假申请
// POST /api/v1/leave
func (h *LeaveHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.leaveSvc.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.Created(c, result)
}

// ListMine 本人请假记录
// GET /api/v1/leave/me
func (h *LeaveHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MyLeaveRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.leaveSvc.ListMine(c.Request.Context(), userID, req.Status)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OK(c, list)
}

// List 全部请假申请（审批视图）
// GET /api/v1/leave
func (h *LeaveHandler) List(c *gin.Context) {
	var req dto.LeaveListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.leaveSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Approve 批准请假
// POST /api/v1/leave/:id/approve
func (h *LeaveHandler) Approve(c *gin.Context) {
	responderID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := MustGetPathID(c, "id")
	if !ok {
		return
	}

	result, err := h.leaveSvc.Approve(c.Request.Context(), id, responderID)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OK(c, result)
}

// Reject 驳回请假
// POST /api/v1/leave/:id/reject
func (h *LeaveHandler) Reject(c *gin.Context) {
	responderID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := MustGetPathID(c, "id")
	if !ok {
		return
	}

	var req dto.RejectLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.leaveSvc.Reject(c.Request.Context(), id, responderID, req.Reason)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *LeaveHandler) handleLeaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLeaveNotFound):
		response.NotFound(c, 14001, "请假申请不存在")
	case errors.Is(err, service.ErrLeaveNotPending):
		response.Conflict(c, 14002, "请假申请已处理，不能重复审批")
	case errors.Is(err, service.ErrLeaveReasonRequired):
		response.BadRequest(c, 14003, "请假事由不能为空")
	case errors.Is(err, service.ErrRejectReasonRequired):
		response.BadRequest(c, 14004, "驳回理由不能为空")
	case errors.Is(err, service.ErrInvalidLeaveType):
		response.BadRequest(c, 14005, "请假类型只能为 sick、vacation 或 personal")
	case errors.Is(err, service.ErrLeaveTooLong):
		response.BadRequest(c, 14006, "单次请假不能超过 366 天")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13001, "日期格式应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 13003, "结束日期不能早于开始日期")
	default:
		response.InternalError(c)
	}
}
