package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"staff-attendance/internal/api/middleware"
	"staff-attendance/internal/permission"
	"staff-attendance/internal/service"
	"staff-attendance/pkg/response"
)

// CvHandler 简历模块 HTTP 处理器
type CvHandler struct {
	cvSvc service.CvService
}

// NewCvHandler 创建 CvHandler
func NewCvHandler(cvSvc service.CvService) *CvHandler {
	return &CvHandler{cvSvc: cvSvc}
}

// Upload 上传（替换）本人简历
// POST /api/v1/cv/upload  (multipart, 字段名 file)
func (h *CvHandler) Upload(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 16003, "简历文件超过大小上限")
			return
		}
		response.BadRequest(c, 10001, "请上传简历文件")
		return
	}

	file, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 16002, "无法读取上传文件")
		return
	}
	defer file.Close()

	result, err := h.cvSvc.Upload(c.Request.Context(), userID, &service.CvUpload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        file,
	})
	if err != nil {
		h.handleCvError(c, err)
		return
	}

	response.Created(c, result)
}

// GetByUser 查询某用户的简历元信息
// GET /api/v1/cv/:userId
func (h *CvHandler) GetByUser(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	userID, ok := MustGetPathID(c, "userId")
	if !ok {
		return
	}

	result, err := h.cvSvc.GetByUser(c.Request.Context(), callerID, role, userID)
	if err != nil {
		h.handleCvError(c, err)
		return
	}

	response.OK(c, result)
}

// Download 下载简历文件
// GET /api/v1/cv/download/:id
func (h *CvHandler) Download(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := MustGetPathID(c, "id")
	if !ok {
		return
	}

	meta, rc, err := h.cvSvc.Open(c.Request.Context(), callerID, role, id)
	if err != nil {
		h.handleCvError(c, err)
		return
	}
	defer rc.Close()

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, meta.Size, contentType, rc, map[string]string{
		"Content-Disposition": "attachment; filename*=UTF-8''" + url.PathEscape(meta.OriginalName),
	})
}

// Delete 删除本人简历
// DELETE /api/v1/cv/:id
func (h *CvHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	id, ok := MustGetPathID(c, "id")
	if !ok {
		return
	}

	if err := h.cvSvc.Delete(c.Request.Context(), callerID, id); err != nil {
		h.handleCvError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *CvHandler) handleCvError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCvNotFound):
		response.NotFound(c, 16001, "简历不存在")
	case errors.Is(err, service.ErrCvEmpty):
		response.BadRequest(c, 16002, "上传文件为空")
	case errors.Is(err, service.ErrCvTooLarge), middleware.IsBodyTooLarge(err):
		response.Error(c, http.StatusRequestEntityTooLarge, 16003, "简历文件超过大小上限")
	case errors.Is(err, permission.ErrForbidden):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}
