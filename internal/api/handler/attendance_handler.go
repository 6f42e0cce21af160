package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"imscaa/backend/internal/dto"
	"imscaa/backend/internal/service"
	"imscaa/backend/pkg/response"
)

// AttendanceHandler 签到模块 HTTP 处理器
type AttendanceHandler struct {
	attSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attSvc: attSvc}
}

// Verify 核验识别凭证，返回成员身份与今天可签到的活动
// POST /api/v1/attendance/verify
func (h *AttendanceHandler) Verify(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.VerifyCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attSvc.Verify(c.Request.Context(), sess, req.OpaqueData)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttendancePermissionDenied):
			response.Forbidden(c, 16001, "没有权限核验签到")
		case errors.Is(err, service.ErrCredentialNotFound):
			// 凭证无效与凭证不存在对扫码端不作区分
			response.NotFound(c, 15001, "识别凭证不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Record 录入签到
// POST /api/v1/attendance
func (h *AttendanceHandler) Record(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attSvc.Record(c.Request.Context(), sess, &req)
	if err != nil {
		var dup *service.DuplicateAttendanceError
		switch {
		case errors.As(err, &dup):
			response.ErrorWithDetails(c, 409, 16003, "该成员在此时间段已有签到记录",
				fmt.Sprintf("已有记录: %s @ %s", dup.Status, dup.ScanDatetime.Format("2006-01-02 15:04:05")))
		case errors.Is(err, service.ErrAttendancePermissionDenied):
			response.Forbidden(c, 16001, "没有权限核验签到")
		case errors.Is(err, service.ErrInvalidAttendanceStatus):
			response.BadRequest(c, 16002, "签到状态不合法")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 11002, "用户不存在")
		case errors.Is(err, service.ErrRequirementNotFound):
			response.NotFound(c, 14001, "活动不存在或不是签到类活动")
		case errors.Is(err, service.ErrTimeSlotNotFound):
			response.NotFound(c, 14002, "时间段不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// List 按活动列出签到记录
// GET /api/v1/attendance?requirement_id=xxx
func (h *AttendanceHandler) List(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attSvc.ListByRequirement(c.Request.Context(), sess, req.RequirementID)
	if err != nil {
		if errors.Is(err, service.ErrRequirementNotFound) {
			response.NotFound(c, 14001, "活动不存在或不是签到类活动")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
