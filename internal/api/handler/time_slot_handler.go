package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"imscaa/backend/internal/dto"
	"imscaa/backend/internal/service"
	"imscaa/backend/pkg/response"
)

// TimeSlotHandler 时间段模块 HTTP 处理器
type TimeSlotHandler struct {
	slotSvc service.TimeSlotService
}

// NewTimeSlotHandler 创建 TimeSlotHandler
func NewTimeSlotHandler(slotSvc service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{slotSvc: slotSvc}
}

// Create 创建签到时间段
// POST /api/v1/time-slots
func (h *TimeSlotHandler) Create(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.CreateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.slotSvc.Create(c.Request.Context(), sess, &req)
	if err != nil {
		var conflict *service.TimeSlotConflictError
		switch {
		case errors.As(err, &conflict):
			response.ErrorWithDetails(c, 409, 14006, "时间段与已有时间段重叠",
				fmt.Sprintf("与「%s」(%s-%s) 重叠", conflict.SlotName, conflict.StartTime, conflict.EndTime))
		case errors.Is(err, service.ErrRequirementNotFound):
			response.NotFound(c, 14001, "活动不存在或不是签到类活动")
		case errors.Is(err, service.ErrInvalidTimeFormat):
			response.BadRequest(c, 14003, "时间格式必须为 HH:MM")
		case errors.Is(err, service.ErrInvalidDateFormat):
			response.BadRequest(c, 14004, "日期格式必须为 YYYY-MM-DD")
		case errors.Is(err, service.ErrInvalidTimeRange):
			response.BadRequest(c, 14005, "结束时间必须晚于开始时间")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// List 列出时间段（可按活动与启用状态过滤）
// GET /api/v1/time-slots?requirement_id=xxx&active_only=true
func (h *TimeSlotHandler) List(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.TimeSlotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.slotSvc.List(c.Request.Context(), sess, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Deactivate 停用时间段（软删除，历史签到保留）
// PUT /api/v1/time-slots/:id/deactivate
func (h *TimeSlotHandler) Deactivate(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.slotSvc.Deactivate(c.Request.Context(), sess, id); err != nil {
		if errors.Is(err, service.ErrTimeSlotNotFound) {
			response.NotFound(c, 14002, "时间段不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
