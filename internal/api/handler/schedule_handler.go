package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"staff-attendance/internal/dto"
	"staff-attendance/internal/model"
	"staff-attendance/internal/service"
	"staff-attendance/pkg/response"
)

// ScheduleHandler 课表模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// List 课表列表
// GET /api/v1/schedules?day=&teacher_id=
func (h *ScheduleHandler) List(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.scheduleSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, list)
}

// Get 课表详情
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := MustGetPathID(c, "id")
	if !ok {
		return
	}

	result, err := h.scheduleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// Create 新增课表
// POST /api/v1/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.scheduleSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, result)
}

// Update 更新课表
// PUT /api/v1/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := MustGetPathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.scheduleSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除课表
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := MustGetPathID(c, "id")
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, nil)
}

// ExportICS 导出 iCalendar；teacher 未指定 teacher_id 时导出本人课表
// GET /api/v1/schedules/ics
func (h *ScheduleHandler) ExportICS(c *gin.Context) {
	userID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ScheduleICSRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	teacherID := req.TeacherID
	if teacherID == "" && role == model.RoleTeacher {
		teacherID = userID
	}

	data, err := h.scheduleSvc.ExportICS(c.Request.Context(), teacherID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="schedule.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 15001, "课表不存在")
	case errors.Is(err, service.ErrScheduleTeacherInvalid):
		response.BadRequest(c, 15002, "授课教师不存在或角色不是 teacher")
	case errors.Is(err, service.ErrInvalidWeekday):
		response.BadRequest(c, 15003, "星期应为 Monday … Sunday")
	case errors.Is(err, service.ErrInvalidClock):
		response.BadRequest(c, 15004, "时间格式应为 HH:MM")
	case errors.Is(err, service.ErrScheduleTimeRange):
		response.BadRequest(c, 15005, "结束时间必须晚于开始时间")
	default:
		response.InternalError(c)
	}
}
