package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"imscaa/backend/internal/service"
	"imscaa/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportAttendance 导出某活动的签到名单（Excel）
// GET /api/v1/export/attendance/:requirement_id
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	requirementID := c.Param("requirement_id")
	if requirementID == "" {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendance(c.Request.Context(), sess, requirementID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, filename, contentTypeXLSX, buf.Bytes())
}

// ExportCalendar 导出社团进行中活动的时间段（ICS 日历）
// GET /api/v1/export/calendar
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportEventCalendar(c.Request.Context(), sess)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, filename, contentTypeICS, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequirementNotFound):
		response.NotFound(c, 14001, "活动不存在或不是签到类活动")
	case errors.Is(err, service.ErrExportNoRecords):
		response.NotFound(c, 17001, "该活动暂无签到记录")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

// writeDownload 设置文件下载响应头并写出内容
func writeDownload(c *gin.Context, filename, contentType string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}
