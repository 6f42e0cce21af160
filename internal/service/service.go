package service

import (
	"go.uber.org/zap"

	"imscaa/backend/config"
	"imscaa/backend/internal/repository"
	"imscaa/backend/pkg/jwt"
	"imscaa/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth            AuthService
	Invite          InviteService
	DeletionRequest DeletionRequestService
	TimeSlot        TimeSlotService
	Credential      CredentialService
	Attendance      AttendanceService
	Export          ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	inviteSvc := NewInviteService(cfg, repo, logger)

	return &Service{
		Auth:            NewAuthService(cfg, repo, inviteSvc, jwtMgr, rdb, logger),
		Invite:          inviteSvc,
		DeletionRequest: NewDeletionRequestService(repo, logger),
		TimeSlot:        NewTimeSlotService(repo, logger),
		Credential:      NewCredentialService(repo, logger),
		Attendance:      NewAttendanceService(repo, logger),
		Export:          NewExportService(repo, logger),
	}
}
