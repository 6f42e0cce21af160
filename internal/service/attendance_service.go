package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"imscaa/backend/internal/dto"
	"imscaa/backend/internal/model"
	"imscaa/backend/internal/repository"
)

// ── 签到模块业务错误 ──

var (
	ErrAttendancePermissionDenied = errors.New("没有权限核验签到")
	ErrInvalidAttendanceStatus    = errors.New("签到状态不合法")
)

// DuplicateAttendanceError 重复签到冲突，携带既有记录信息供扫码端提示
type DuplicateAttendanceError struct {
	Status       string
	ScanDatetime time.Time
}

func (e *DuplicateAttendanceError) Error() string {
	return fmt.Sprintf("该成员已于 %s 签到（%s）", e.ScanDatetime.Format("2006-01-02 15:04:05"), e.Status)
}

// AttendanceService 签到业务接口
type AttendanceService interface {
	Verify(ctx context.Context, sess *dto.Session, opaqueData string) (*dto.VerifyCredentialResponse, error)
	Record(ctx context.Context, sess *dto.Session, req *dto.RecordAttendanceRequest) (*dto.AttendanceRecordResponse, error)
	ListByRequirement(ctx context.Context, sess *dto.Session, requirementID string) ([]dto.AttendanceRecordResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

// ────────────────────── Verify ──────────────────────

// Verify 扫码核验：解析凭证 → 成员身份 + 今天进行中的活动（含今天启用的时段）
// + 该成员今天已有的签到。凭证无效、已停用或跨社团一律返回 ErrCredentialNotFound
func (s *attendanceService) Verify(ctx context.Context, sess *dto.Session, opaqueData string) (*dto.VerifyCredentialResponse, error) {
	if !model.CanVerifyAttendance(sess.Role) {
		return nil, ErrAttendancePermissionDenied
	}

	cred, err := s.repo.Credential.GetActiveByData(ctx, sess.ClubID, opaqueData)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredentialNotFound
		}
		s.logger.Error("查询凭证失败", zap.Error(err))
		return nil, err
	}

	member, err := s.repo.User.GetByID(ctx, sess.ClubID, cred.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredentialNotFound
		}
		s.logger.Error("查询成员失败", zap.String("user_id", cred.UserID), zap.Error(err))
		return nil, err
	}

	today := time.Now()

	events, err := s.repo.Requirement.ListActiveEvents(ctx, sess.ClubID, today)
	if err != nil {
		s.logger.Error("查询进行中的活动失败", zap.Error(err))
		return nil, err
	}

	eventResponses := make([]dto.EventWithSlotsResponse, 0, len(events))
	for i := range events {
		slots, err := s.repo.TimeSlot.ListActiveByRequirementAndDate(ctx, events[i].RequirementID, today)
		if err != nil {
			s.logger.Error("查询活动时间段失败",
				zap.String("requirement_id", events[i].RequirementID),
				zap.Error(err))
			return nil, err
		}

		slotResponses := make([]dto.TimeSlotResponse, 0, len(slots))
		for j := range slots {
			slotResponses = append(slotResponses, dto.TimeSlotResponse{
				SlotID:        slots[j].SlotID,
				RequirementID: slots[j].RequirementID,
				SlotName:      slots[j].SlotName,
				StartTime:     slots[j].StartTime,
				EndTime:       slots[j].EndTime,
				Date:          slots[j].Date.Format(model.DateLayout),
				IsActive:      slots[j].IsActive,
			})
		}

		eventResponses = append(eventResponses, dto.EventWithSlotsResponse{
			RequirementID: events[i].RequirementID,
			Name:          events[i].Name,
			StartDate:     events[i].StartDate.Format(model.DateLayout),
			EndDate:       events[i].EndDate.Format(model.DateLayout),
			TimeSlots:     slotResponses,
		})
	}

	records, err := s.repo.Attendance.ListByUserAndDate(ctx, member.UserID, today)
	if err != nil {
		s.logger.Error("查询当日签到失败", zap.String("user_id", member.UserID), zap.Error(err))
		return nil, err
	}

	recordResponses := make([]dto.AttendanceRecordResponse, 0, len(records))
	for i := range records {
		recordResponses = append(recordResponses, *s.toAttendanceResponse(&records[i]))
	}

	return &dto.VerifyCredentialResponse{
		User: dto.UserResponse{
			ID:     member.UserID,
			Name:   member.Name,
			Email:  member.Email,
			Role:   member.Role,
			ClubID: member.ClubID,
		},
		ActiveEvents:    eventResponses,
		AttendanceToday: recordResponses,
	}, nil
}

// ────────────────────── Record ──────────────────────

// Record 录入签到。(user, requirement, slot) 唯一性检查与插入在同一事务内，
// time_slot_id 为空视为独立键，两条无时段记录同样冲突
func (s *attendanceService) Record(ctx context.Context, sess *dto.Session, req *dto.RecordAttendanceRequest) (*dto.AttendanceRecordResponse, error) {
	if !model.CanVerifyAttendance(sess.Role) {
		return nil, ErrAttendancePermissionDenied
	}
	if !model.ValidAttendanceStatus(req.Status) {
		return nil, ErrInvalidAttendanceStatus
	}

	if _, err := s.repo.User.GetByID(ctx, sess.ClubID, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询成员失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	requirement, err := s.repo.Requirement.GetByID(ctx, sess.ClubID, req.RequirementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequirementNotFound
		}
		s.logger.Error("查询活动失败", zap.String("requirement_id", req.RequirementID), zap.Error(err))
		return nil, err
	}
	if requirement.Kind != model.RequirementKindEvent {
		return nil, ErrRequirementNotFound
	}

	// 指定时段时须属于该活动且仍然启用
	if req.TimeSlotID != nil {
		slot, err := s.repo.TimeSlot.GetByID(ctx, *req.TimeSlotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTimeSlotNotFound
			}
			s.logger.Error("查询时间段失败", zap.String("slot_id", *req.TimeSlotID), zap.Error(err))
			return nil, err
		}
		if slot.RequirementID != req.RequirementID || !slot.IsActive {
			return nil, ErrTimeSlotNotFound
		}
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	existing, err := txRepo.Attendance.GetByKeyForUpdate(ctx, req.UserID, req.RequirementID, req.TimeSlotID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("查询既有签到失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, &DuplicateAttendanceError{
			Status:       existing.Status,
			ScanDatetime: existing.ScanDatetime,
		}
	}

	record := &model.AttendanceRecord{
		ClubID:        sess.ClubID,
		UserID:        req.UserID,
		RequirementID: req.RequirementID,
		TimeSlotID:    req.TimeSlotID,
		VerifiedBy:    sess.UserID,
		Status:        req.Status,
		ScanDatetime:  time.Now(),
		Notes:         req.Notes,
	}

	if err := txRepo.Attendance.Create(ctx, record); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		// 并发落败方撞上部分唯一索引：事务已中止，回滚后在新连接上读回赢家的记录
		if repository.IsUniqueViolation(err) {
			winner, readErr := s.repo.Attendance.GetByKey(ctx, req.UserID, req.RequirementID, req.TimeSlotID)
			if readErr == nil {
				return nil, &DuplicateAttendanceError{
					Status:       winner.Status,
					ScanDatetime: winner.ScanDatetime,
				}
			}
			s.logger.Error("读回既有签到失败", zap.Error(readErr))
		}
		s.logger.Error("创建签到记录失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("签到已录入",
		zap.String("user_id", req.UserID),
		zap.String("requirement_id", req.RequirementID),
		zap.String("status", req.Status))

	return s.toAttendanceResponse(record), nil
}

// ────────────────────── ListByRequirement ──────────────────────

func (s *attendanceService) ListByRequirement(ctx context.Context, sess *dto.Session, requirementID string) ([]dto.AttendanceRecordResponse, error) {
	records, err := s.repo.Attendance.ListByRequirement(ctx, sess.ClubID, requirementID)
	if err != nil {
		s.logger.Error("列出签到记录失败", zap.String("requirement_id", requirementID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttendanceRecordResponse, 0, len(records))
	for i := range records {
		result = append(result, *s.toAttendanceResponse(&records[i]))
	}

	return result, nil
}

// ── 内部辅助方法 ──

func (s *attendanceService) toAttendanceResponse(record *model.AttendanceRecord) *dto.AttendanceRecordResponse {
	resp := &dto.AttendanceRecordResponse{
		AttendanceID:  record.AttendanceID,
		UserID:        record.UserID,
		RequirementID: record.RequirementID,
		TimeSlotID:    record.TimeSlotID,
		VerifiedBy:    record.VerifiedBy,
		Status:        record.Status,
		ScanDatetime:  record.ScanDatetime.UTC().Format(time.RFC3339),
		Notes:         record.Notes,
	}
	if record.User != nil {
		resp.UserName = record.User.Name
	}
	if record.TimeSlot != nil {
		resp.SlotName = record.TimeSlot.SlotName
	}
	return resp
}
