package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"staff-attendance/internal/dto"
	"staff-attendance/internal/permission"
	"staff-attendance/internal/service"
	"staff-attendance/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
	exportSvc     service.ExportService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService, exportSvc service.ExportService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc, exportSvc: exportSvc}
}

// Mark 标记考勤
// POST /api/v1/attendance/mark
func (h *AttendanceHandler) Mark(c *gin.Context) {
	markerID, markerRole, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.Mark(c.Request.Context(), markerID, markerRole, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// Today 今日考勤看板
// GET /api/v1/attendance-today
func (h *AttendanceHandler) Today(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.AttendanceTodayRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.Today(c.Request.Context(), role, &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// List 考勤历史（分页）
// GET /api/v1/attendance
func (h *AttendanceHandler) List(c *gin.Context) {
	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.attendanceSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// MySummary 本人月度考勤
// GET /api/v1/attendance/me
func (h *AttendanceHandler) MySummary(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MySummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.MySummary(c.Request.Context(), userID, req.Month)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// Export 导出考勤 Excel
// GET /api/v1/attendance/export?from=YYYY-MM-DD&to=YYYY-MM-DD[&department=]
func (h *AttendanceHandler) Export(c *gin.Context) {
	var req dto.AttendanceExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "from 与 to 为必填日期（YYYY-MM-DD）")
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendance(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13001, "日期格式应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidMonth):
		response.BadRequest(c, 13002, "月份格式应为 YYYY-MM")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 13003, "结束日期不能早于开始日期")
	case errors.Is(err, service.ErrInvalidAttendanceStatus):
		response.BadRequest(c, 13004, "考勤状态只能为 present、absent 或 late")
	case errors.Is(err, service.ErrTargetInactive):
		response.BadRequest(c, 13005, "目标用户已停用")
	case errors.Is(err, service.ErrCannotMarkTarget), errors.Is(err, permission.ErrForbidden):
		response.Forbidden(c, 13006, "无权为该用户标记考勤")
	case errors.Is(err, service.ErrExportRangeTooLong):
		response.BadRequest(c, 13007, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		response.InternalError(c)
	}
}
