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

// ── 时间段模块业务错误 ──

var (
	ErrRequirementNotFound = errors.New("活动不存在或不是签到类活动")
	ErrTimeSlotNotFound    = errors.New("时间段不存在")
	ErrInvalidTimeFormat   = errors.New("时间格式必须为 HH:MM")
	ErrInvalidDateFormat   = errors.New("日期格式必须为 YYYY-MM-DD")
	ErrInvalidTimeRange    = errors.New("结束时间必须晚于开始时间")
)

// TimeSlotConflictError 时间段重叠冲突，携带冲突时段信息
type TimeSlotConflictError struct {
	SlotID    string
	SlotName  string
	StartTime string
	EndTime   string
}

func (e *TimeSlotConflictError) Error() string {
	return fmt.Sprintf("时间段与「%s」(%s-%s) 重叠", e.SlotName, e.StartTime, e.EndTime)
}

// TimeSlotService 签到时间段业务接口
type TimeSlotService interface {
	Create(ctx context.Context, sess *dto.Session, req *dto.CreateTimeSlotRequest) (*dto.TimeSlotResponse, error)
	List(ctx context.Context, sess *dto.Session, req *dto.TimeSlotListRequest) ([]dto.TimeSlotResponse, error)
	Deactivate(ctx context.Context, sess *dto.Session, id string) error
}

type timeSlotService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimeSlotService 创建 TimeSlotService 实例
func NewTimeSlotService(repo *repository.Repository, logger *zap.Logger) TimeSlotService {
	return &timeSlotService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

// Create 创建时间段。重叠校验与插入在同一事务内完成：
// 先锁定活动行串行化并发创建，再取出同 (requirement, date) 的启用时段逐一比较区间
func (s *timeSlotService) Create(ctx context.Context, sess *dto.Session, req *dto.CreateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
	if _, err := time.Parse(model.TimeLayout, req.StartTime); err != nil {
		return nil, ErrInvalidTimeFormat
	}
	if _, err := time.Parse(model.TimeLayout, req.EndTime); err != nil {
		return nil, ErrInvalidTimeFormat
	}
	if req.EndTime <= req.StartTime {
		return nil, ErrInvalidTimeRange
	}
	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	// 挂靠点必须是本社团的 event 类活动
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

	// 锁住活动行以串行化同一活动下的并发创建：
	// 同 (requirement, date) 尚无时段时 FOR UPDATE 扫描锁不到任何行，
	// 两个并发事务都会看到空集并各自提交，必须靠父行锁互斥
	if _, err := txRepo.Requirement.GetByIDForUpdate(ctx, sess.ClubID, req.RequirementID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequirementNotFound
		}
		s.logger.Error("锁定活动失败", zap.String("requirement_id", req.RequirementID), zap.Error(err))
		return nil, err
	}

	existing, err := txRepo.TimeSlot.ListActiveByRequirementAndDateForUpdate(ctx, req.RequirementID, date)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("查询既有时间段失败", zap.Error(err))
		return nil, err
	}

	for i := range existing {
		if timeRangesOverlap(req.StartTime, req.EndTime, existing[i].StartTime, existing[i].EndTime) {
			if tx != nil {
				tx.Rollback()
			}
			return nil, &TimeSlotConflictError{
				SlotID:    existing[i].SlotID,
				SlotName:  existing[i].SlotName,
				StartTime: existing[i].StartTime,
				EndTime:   existing[i].EndTime,
			}
		}
	}

	slot := &model.TimeSlot{
		RequirementID: req.RequirementID,
		SlotName:      req.SlotName,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Date:          date,
		IsActive:      true,
	}
	slot.CreatedBy = &sess.UserID
	slot.UpdatedBy = &sess.UserID

	if err := txRepo.TimeSlot.Create(ctx, slot); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建时间段失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	return s.toTimeSlotResponse(slot), nil
}

// ────────────────────── List ──────────────────────

func (s *timeSlotService) List(ctx context.Context, sess *dto.Session, req *dto.TimeSlotListRequest) ([]dto.TimeSlotResponse, error) {
	slots, err := s.repo.TimeSlot.List(ctx, sess.ClubID, req.RequirementID, req.ActiveOnly)
	if err != nil {
		s.logger.Error("列出时间段失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TimeSlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, *s.toTimeSlotResponse(&slots[i]))
	}

	return result, nil
}

// ────────────────────── Deactivate ──────────────────────

// Deactivate 停用时间段。被签到记录引用的时段只做软停用，不物理删除
func (s *timeSlotService) Deactivate(ctx context.Context, sess *dto.Session, id string) error {
	slot, err := s.repo.TimeSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimeSlotNotFound
		}
		s.logger.Error("查询时间段失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 跨社团越权访问与不存在同样处理
	if _, err := s.repo.Requirement.GetByID(ctx, sess.ClubID, slot.RequirementID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimeSlotNotFound
		}
		return err
	}

	if err := s.repo.TimeSlot.Deactivate(ctx, id, sess.UserID); err != nil {
		s.logger.Error("停用时间段失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

// timeRangesOverlap 判断两个半开区间 [s1,e1) 与 [s2,e2) 是否重叠。
// 时间为 "HH:MM" 字符串，字典序即时间序
func timeRangesOverlap(s1, e1, s2, e2 string) bool {
	return s1 < e2 && s2 < e1
}

func (s *timeSlotService) toTimeSlotResponse(slot *model.TimeSlot) *dto.TimeSlotResponse {
	return &dto.TimeSlotResponse{
		SlotID:        slot.SlotID,
		RequirementID: slot.RequirementID,
		SlotName:      slot.SlotName,
		StartTime:     slot.StartTime,
		EndTime:       slot.EndTime,
		Date:          slot.Date.Format(model.DateLayout),
		IsActive:      slot.IsActive,
		CreatedAt:     slot.CreatedAt.UTC().Format(time.RFC3339),
	}
}
