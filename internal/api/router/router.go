package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"imscaa/backend/config"
	"imscaa/backend/internal/api/handler"
	"imscaa/backend/internal/api/middleware"
	"imscaa/backend/internal/model"
	"imscaa/backend/pkg/jwt"
	"imscaa/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 核验角色：可扫码录入签到的三类管理角色
	verifierRoles := []string{model.RoleAdviser, model.RolePresident, model.RoleOfficer}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.GET("/invite/:token", h.Auth.ValidateInvite)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 邀请码模块（签发权限由 Service 层角色表判定）
			invites := authorized.Group("/invites")
			{
				invites.POST("", h.Invite.Issue)
				invites.GET("", middleware.RoleAuth(model.RoleAdviser, model.RolePresident), h.Invite.List)
			}

			// 删除申请模块
			deletionRequests := authorized.Group("/deletion-requests")
			{
				deletionRequests.POST("", h.DeletionRequest.Submit)
				deletionRequests.GET("", middleware.RoleAuth(model.RoleAdviser), h.DeletionRequest.List)
				deletionRequests.PUT("/:id/approve", middleware.RoleAuth(model.RoleAdviser), h.DeletionRequest.Approve)
				deletionRequests.PUT("/:id/deny", middleware.RoleAuth(model.RoleAdviser), h.DeletionRequest.Deny)
				deletionRequests.PUT("/:id/cancel", h.DeletionRequest.Cancel) // 申请人本人（Service 层鉴权）
			}

			// 时间段模块
			timeSlots := authorized.Group("/time-slots")
			{
				timeSlots.GET("", h.TimeSlot.List)
				timeSlots.POST("", middleware.RoleAuth(verifierRoles...), h.TimeSlot.Create)
				timeSlots.PUT("/:id/deactivate", middleware.RoleAuth(verifierRoles...), h.TimeSlot.Deactivate)
			}

			// 识别凭证模块
			credentials := authorized.Group("/credentials")
			{
				credentials.GET("/me", h.Credential.GetMine)
				credentials.POST("/:user_id/regenerate", h.Credential.Regenerate) // 管理角色或本人（Service 层鉴权）
			}

			// 签到模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/verify",
					middleware.RoleAuth(verifierRoles...),
					middleware.RateLimit(rdb, 60, time.Minute),
					h.Attendance.Verify)
				attendance.POST("", middleware.RoleAuth(verifierRoles...), h.Attendance.Record)
				attendance.GET("", h.Attendance.List)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/attendance/:requirement_id",
					middleware.RoleAuth(model.RoleAdviser, model.RolePresident), h.Export.ExportAttendance)
				export.GET("/calendar", h.Export.ExportCalendar)
			}
		}
	}

	return r
}
