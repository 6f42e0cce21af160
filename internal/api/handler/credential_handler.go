package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"imscaa/backend/internal/service"
	"imscaa/backend/pkg/response"
)

// CredentialHandler 识别凭证模块 HTTP 处理器
type CredentialHandler struct {
	credSvc service.CredentialService
}

// NewCredentialHandler 创建 CredentialHandler
func NewCredentialHandler(credSvc service.CredentialService) *CredentialHandler {
	return &CredentialHandler{credSvc: credSvc}
}

// Regenerate 重新生成指定成员的识别凭证（旧凭证停用，历史保留）
// POST /api/v1/credentials/:user_id/regenerate
func (h *CredentialHandler) Regenerate(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	userID := c.Param("user_id")
	if userID == "" {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.credSvc.Regenerate(c.Request.Context(), sess, userID)
	if err != nil {
		h.handleCredentialError(c, err)
		return
	}

	response.Created(c, result)
}

// GetMine 获取本人当前启用的识别凭证，不存在时自动生成
// GET /api/v1/credentials/me
func (h *CredentialHandler) GetMine(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	result, err := h.credSvc.GetActive(c.Request.Context(), sess, sess.UserID)
	if errors.Is(err, service.ErrCredentialNotFound) {
		// 首次访问时生成
		result, err = h.credSvc.Generate(c.Request.Context(), sess, sess.UserID)
	}
	if err != nil {
		h.handleCredentialError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *CredentialHandler) handleCredentialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCredentialNotFound):
		response.NotFound(c, 15001, "识别凭证不存在")
	case errors.Is(err, service.ErrCredentialExhausted):
		response.InternalError(c)
	case errors.Is(err, service.ErrCredentialPermissionDenied):
		response.Forbidden(c, 15003, "没有权限操作该成员的凭证")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11002, "用户不存在")
	default:
		response.InternalError(c)
	}
}
