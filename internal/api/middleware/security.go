package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders 纯 JSON API 的安全响应头。
// 服务不渲染任何页面，CSP 直接锁死 default-src 'none'；
// 签到凭证等敏感数据禁止中间缓存
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Cache-Control", "no-store")

		c.Next()
	}
}
