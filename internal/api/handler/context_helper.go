package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"imscaa/backend/internal/dto"
	"imscaa/backend/pkg/response"
)

// MustGetSession 从 Gin 上下文中提取 JWT 中间件注入的会话三元组。
// 任一字段缺失说明中间件未生效，写入 401 响应并返回 false，
// 调用方应在 ok=false 时直接 return。
func MustGetSession(c *gin.Context) (*dto.Session, bool) {
	userID, ok1 := getContextString(c, "user_id")
	role, ok2 := getContextString(c, "role")
	clubID, ok3 := getContextString(c, "club_id")
	if !ok1 || !ok2 || !ok3 {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return &dto.Session{UserID: userID, Role: role, ClubID: clubID}, true
}

// MustGetTokenMeta 提取当前 Token 的 JTI 与过期时间（注销加黑名单用）
func MustGetTokenMeta(c *gin.Context) (string, time.Time, bool) {
	jti, ok := getContextString(c, "token_jti")
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	v, exists := c.Get("token_exp")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	exp, ok := v.(time.Time)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	return jti, exp, true
}

func getContextString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
