package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"imscaa/backend/internal/model"
)

// TimeSlotRepository 签到时间段数据访问接口
type TimeSlotRepository interface {
	Create(ctx context.Context, slot *model.TimeSlot) error
	GetByID(ctx context.Context, id string) (*model.TimeSlot, error)
	List(ctx context.Context, clubID, requirementID string, activeOnly bool) ([]model.TimeSlot, error)
	// ListActiveByRequirementAndDateForUpdate 行级锁查询同 (requirement, date) 的启用时间段，
	// 重叠校验与插入在同一事务内完成，防止并发创建出重叠时段
	ListActiveByRequirementAndDateForUpdate(ctx context.Context, requirementID string, date time.Time) ([]model.TimeSlot, error)
	ListActiveByRequirementAndDate(ctx context.Context, requirementID string, date time.Time) ([]model.TimeSlot, error)
	Deactivate(ctx context.Context, id, updatedBy string) error
	DeleteByRequirement(ctx context.Context, requirementID string) error
	DeleteByClub(ctx context.Context, clubID string) error
}

type timeSlotRepo struct {
	db *gorm.DB
}

// NewTimeSlotRepo 创建 TimeSlotRepository 实例
func NewTimeSlotRepo(db *gorm.DB) TimeSlotRepository {
	return &timeSlotRepo{db: db}
}

func (r *timeSlotRepo) Create(ctx context.Context, slot *model.TimeSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *timeSlotRepo) GetByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	err := r.db.WithContext(ctx).
		Preload("Requirement").
		Where("slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// List 按社团（经由所属要求）过滤时间段，按 (date, start_time) 排序
func (r *timeSlotRepo) List(ctx context.Context, clubID, requirementID string, activeOnly bool) ([]model.TimeSlot, error) {
	db := r.db.WithContext(ctx).
		Joins("JOIN requirements ON requirements.requirement_id = time_slots.requirement_id").
		Where("requirements.club_id = ?", clubID)

	if requirementID != "" {
		db = db.Where("time_slots.requirement_id = ?", requirementID)
	}
	if activeOnly {
		db = db.Where("time_slots.is_active = ?", true)
	}

	var slots []model.TimeSlot
	err := db.Order("time_slots.date ASC, time_slots.start_time ASC").
		Find(&slots).Error
	return slots, err
}

// ListActiveByRequirementAndDateForUpdate 使用 SELECT ... FOR UPDATE 锁住参与重叠校验的行
// 必须在已有事务的 *gorm.DB 上调用（通过 Repository.WithTx 注入事务连接）
func (r *timeSlotRepo) ListActiveByRequirementAndDateForUpdate(ctx context.Context, requirementID string, date time.Time) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	err := r.db.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		Where("requirement_id = ? AND date = ? AND is_active = ?", requirementID, date.Format(model.DateLayout), true).
		Order("start_time ASC").
		Find(&slots).Error
	return slots, err
}

func (r *timeSlotRepo) ListActiveByRequirementAndDate(ctx context.Context, requirementID string, date time.Time) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	err := r.db.WithContext(ctx).
		Where("requirement_id = ? AND date = ? AND is_active = ?", requirementID, date.Format(model.DateLayout), true).
		Order("start_time ASC").
		Find(&slots).Error
	return slots, err
}

// Deactivate 停用时间段（被签到记录引用的时段不物理删除）
func (r *timeSlotRepo) Deactivate(ctx context.Context, id, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.TimeSlot{}).
		Where("slot_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_by": updatedBy,
		}).Error
}

func (r *timeSlotRepo) DeleteByRequirement(ctx context.Context, requirementID string) error {
	return r.db.WithContext(ctx).
		Where("requirement_id = ?", requirementID).
		Delete(&model.TimeSlot{}).Error
}

func (r *timeSlotRepo) DeleteByClub(ctx context.Context, clubID string) error {
	return r.db.WithContext(ctx).
		Where("requirement_id IN (?)",
			r.db.Model(&model.Requirement{}).Select("requirement_id").Where("club_id = ?", clubID),
		).
		Delete(&model.TimeSlot{}).Error
}
