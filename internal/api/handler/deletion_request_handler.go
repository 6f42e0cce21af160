package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"imscaa/backend/internal/dto"
	"imscaa/backend/internal/service"
	"imscaa/backend/pkg/response"
)

// DeletionRequestHandler 删除申请模块 HTTP 处理器
type DeletionRequestHandler struct {
	drSvc service.DeletionRequestService
}

// NewDeletionRequestHandler 创建 DeletionRequestHandler
func NewDeletionRequestHandler(drSvc service.DeletionRequestService) *DeletionRequestHandler {
	return &DeletionRequestHandler{drSvc: drSvc}
}

// Submit 提交删除申请
// POST /api/v1/deletion-requests
func (h *DeletionRequestHandler) Submit(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.SubmitDeletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.drSvc.Submit(c.Request.Context(), sess, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDeletionTypeInvalid):
			response.BadRequest(c, 13003, "删除目标类型不合法")
		case errors.Is(err, service.ErrDeletionTargetNotFound):
			response.NotFound(c, 13004, "删除目标不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// List 列出本社团的删除申请（可按状态过滤）
// GET /api/v1/deletion-requests?status=pending
func (h *DeletionRequestHandler) List(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.DeletionRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.drSvc.List(c.Request.Context(), sess, req.Status)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Approve 批准删除申请并执行级联删除
// PUT /api/v1/deletion-requests/:id/approve
func (h *DeletionRequestHandler) Approve(c *gin.Context) {
	h.transition(c, h.drSvc.Approve)
}

// Deny 驳回删除申请
// PUT /api/v1/deletion-requests/:id/deny
func (h *DeletionRequestHandler) Deny(c *gin.Context) {
	h.transition(c, h.drSvc.Deny)
}

// Cancel 撤销自己提交的删除申请
// PUT /api/v1/deletion-requests/:id/cancel
func (h *DeletionRequestHandler) Cancel(c *gin.Context) {
	h.transition(c, h.drSvc.Cancel)
}

// transition 三个状态流转接口共享的参数提取与错误映射
func (h *DeletionRequestHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, sess *dto.Session, id string) (*dto.DeletionRequestResponse, error),
) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := fn(c.Request.Context(), sess, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			response.NotFound(c, 13001, "删除申请不存在")
		case errors.Is(err, service.ErrRequestAlreadyProcessed):
			response.Conflict(c, 13002, "删除申请已被处理")
		case errors.Is(err, service.ErrDeletionPermissionDenied):
			response.Forbidden(c, 13005, "只有指导老师可以审批删除申请")
		case errors.Is(err, service.ErrNotRequestOwner):
			response.Forbidden(c, 13006, "只有申请人本人可以撤销申请")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
