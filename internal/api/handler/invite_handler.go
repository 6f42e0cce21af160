package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"imscaa/backend/internal/dto"
	"imscaa/backend/internal/service"
	"imscaa/backend/pkg/response"
)

// InviteHandler 邀请码模块 HTTP 处理器
type InviteHandler struct {
	inviteSvc service.InviteService
}

// NewInviteHandler 创建 InviteHandler
func NewInviteHandler(inviteSvc service.InviteService) *InviteHandler {
	return &InviteHandler{inviteSvc: inviteSvc}
}

// Issue 签发邀请码
// POST /api/v1/invites
func (h *InviteHandler) Issue(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.IssueInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.inviteSvc.Issue(c.Request.Context(), sess, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitePermissionDenied):
			response.Forbidden(c, 12001, "无权签发该角色的邀请码")
		case errors.Is(err, service.ErrInviteInvalidRole):
			response.BadRequest(c, 12002, "邀请角色不合法")
		case errors.Is(err, service.ErrInviteInvalidSignups):
			response.BadRequest(c, 12003, "注册名额不合法")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// List 列出本社团签发过的邀请码
// GET /api/v1/invites
func (h *InviteHandler) List(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	result, err := h.inviteSvc.List(c.Request.Context(), sess)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
