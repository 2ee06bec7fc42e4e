package handler

import (
	"github.com/gin-gonic/gin"

	"staff-attendance/internal/service"
	"staff-attendance/pkg/response"
)

// StatsHandler 统计看板 HTTP 处理器
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Overview 全局统计
// GET /api/v1/stats
func (h *StatsHandler) Overview(c *gin.Context) {
	result, err := h.statsSvc.Overview(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Departments 各部门当日汇总
// GET /api/v1/stats/departments
func (h *StatsHandler) Departments(c *gin.Context) {
	result, err := h.statsSvc.DepartmentSummary(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
