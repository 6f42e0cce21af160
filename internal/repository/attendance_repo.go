package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"imscaa/backend/internal/model"
)

// AttendanceRepository 签到记录数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, record *model.AttendanceRecord) error
	// GetByKeyForUpdate 按 (user, requirement, slot) 键锁查既有记录；
	// slotID 为 nil 时匹配 time_slot_id IS NULL（NULL 与 NULL 冲突）
	GetByKeyForUpdate(ctx context.Context, userID, requirementID string, slotID *string) (*model.AttendanceRecord, error)
	// GetByKey 无锁版本，事务回滚后读回并发落库的记录用
	GetByKey(ctx context.Context, userID, requirementID string, slotID *string) (*model.AttendanceRecord, error)
	ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]model.AttendanceRecord, error)
	ListByRequirement(ctx context.Context, clubID, requirementID string) ([]model.AttendanceRecord, error)
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByRequirement(ctx context.Context, requirementID string) error
	DeleteByClub(ctx context.Context, clubID string) error
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByKeyForUpdate 使用 SELECT ... FOR UPDATE 行级锁做重复检查
// 必须在已有事务的 *gorm.DB 上调用（通过 Repository.WithTx 注入事务连接）
func (r *attendanceRepo) GetByKeyForUpdate(ctx context.Context, userID, requirementID string, slotID *string) (*model.AttendanceRecord, error) {
	db := r.db.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		Where("user_id = ? AND requirement_id = ?", userID, requirementID)

	if slotID != nil {
		db = db.Where("time_slot_id = ?", *slotID)
	} else {
		db = db.Where("time_slot_id IS NULL")
	}

	var record model.AttendanceRecord
	if err := db.First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepo) GetByKey(ctx context.Context, userID, requirementID string, slotID *string) (*model.AttendanceRecord, error) {
	db := r.db.WithContext(ctx).
		Where("user_id = ? AND requirement_id = ?", userID, requirementID)

	if slotID != nil {
		db = db.Where("time_slot_id = ?", *slotID)
	} else {
		db = db.Where("time_slot_id IS NULL")
	}

	var record model.AttendanceRecord
	if err := db.First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByUserAndDate 查询成员某天的签到记录（扫码端消歧用）
func (r *attendanceRepo) ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]model.AttendanceRecord, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("TimeSlot").
		Where("user_id = ? AND scan_datetime >= ? AND scan_datetime < ?", userID, dayStart, dayEnd).
		Order("scan_datetime ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByRequirement(ctx context.Context, clubID, requirementID string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("TimeSlot").
		Where("club_id = ? AND requirement_id = ?", clubID, requirementID).
		Order("scan_datetime ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.AttendanceRecord{}).Error
}

func (r *attendanceRepo) DeleteByRequirement(ctx context.Context, requirementID string) error {
	return r.db.WithContext(ctx).
		Where("requirement_id = ?", requirementID).
		Delete(&model.AttendanceRecord{}).Error
}

func (r *attendanceRepo) DeleteByClub(ctx context.Context, clubID string) error {
	return r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Delete(&model.AttendanceRecord{}).Error
}
