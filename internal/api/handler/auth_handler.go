package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"imscaa/backend/internal/dto"
	"imscaa/backend/internal/service"
	"imscaa/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc   service.AuthService
	inviteSvc service.InviteService
}

// NewAuthHandler 创建 AuthHandler
// inviteSvc 仅用于注册前的邀请码预检接口
func NewAuthHandler(authSvc service.AuthService, inviteSvc service.InviteService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, inviteSvc: inviteSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11001, "邮箱或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Register 邀请注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			response.NotFound(c, 12004, "邀请码不存在")
		case errors.Is(err, service.ErrInviteExpired):
			response.Gone(c, 12005, "邀请码已过期")
		case errors.Is(err, service.ErrInviteExhausted):
			response.Gone(c, 12006, "邀请码名额已用尽")
		case errors.Is(err, service.ErrEmailTaken):
			response.Conflict(c, 11003, "邮箱已被注册")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// ValidateInvite 注册前邀请码预检（公开接口，只读）
// GET /api/v1/auth/invite/:token
func (h *AuthHandler) ValidateInvite(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.inviteSvc.Validate(c.Request.Context(), token)
	if err != nil {
		response.InternalError(c)
		return
	}

	// 无效原因在响应体中区分，HTTP 层统一 200
	response.OK(c, result)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrRefreshInvalid) {
			response.Error(c, http.StatusUnauthorized, 11004, "刷新令牌无效")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出（当前 Access Token 加入黑名单）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp, ok := MustGetTokenMeta(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GetCurrentUser 获取当前登录成员信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GetCurrentUser(c.Request.Context(), sess)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 11002, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
