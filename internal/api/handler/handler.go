package handler

import "imscaa/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth            *AuthHandler
	Invite          *InviteHandler
	DeletionRequest *DeletionRequestHandler
	TimeSlot        *TimeSlotHandler
	Credential      *CredentialHandler
	Attendance      *AttendanceHandler
	Export          *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:            NewAuthHandler(svc.Auth, svc.Invite),
		Invite:          NewInviteHandler(svc.Invite),
		DeletionRequest: NewDeletionRequestHandler(svc.DeletionRequest),
		TimeSlot:        NewTimeSlotHandler(svc.TimeSlot),
		Credential:      NewCredentialHandler(svc.Credential),
		Attendance:      NewAttendanceHandler(svc.Attendance),
		Export:          NewExportHandler(svc.Export),
	}
}
