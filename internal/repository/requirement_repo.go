package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"imscaa/backend/internal/model"
)

// RequirementRepository 社团要求数据访问接口
// 花名册/费用模块负责完整 CRUD；核心模块只需查询与级联删除
type RequirementRepository interface {
	Create(ctx context.Context, req *model.Requirement) error
	GetByID(ctx context.Context, clubID, id string) (*model.Requirement, error)
	GetByIDForUpdate(ctx context.Context, clubID, id string) (*model.Requirement, error)
	ListActiveEvents(ctx context.Context, clubID string, date time.Time) ([]model.Requirement, error)
	Delete(ctx context.Context, clubID, id string) error
	DeleteByClub(ctx context.Context, clubID string) error
}

type requirementRepo struct {
	db *gorm.DB
}

// NewRequirementRepo 创建 RequirementRepository 实例
func NewRequirementRepo(db *gorm.DB) RequirementRepository {
	return &requirementRepo{db: db}
}

func (r *requirementRepo) Create(ctx context.Context, req *model.Requirement) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *requirementRepo) GetByID(ctx context.Context, clubID, id string) (*model.Requirement, error) {
	var req model.Requirement
	err := r.db.WithContext(ctx).
		Where("club_id = ? AND requirement_id = ?", clubID, id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByIDForUpdate 以行级锁取出要求，用于串行化同一要求下的并发写入
func (r *requirementRepo) GetByIDForUpdate(ctx context.Context, clubID, id string) (*model.Requirement, error) {
	var req model.Requirement
	err := r.db.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		Where("club_id = ? AND requirement_id = ?", clubID, id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListActiveEvents 查询给定日期进行中的活动类要求
func (r *requirementRepo) ListActiveEvents(ctx context.Context, clubID string, date time.Time) ([]model.Requirement, error) {
	var reqs []model.Requirement
	d := date.Format(model.DateLayout)
	err := r.db.WithContext(ctx).
		Where("club_id = ? AND kind = ? AND is_active = ?", clubID, model.RequirementKindEvent, true).
		Where("start_date <= ? AND end_date >= ?", d, d).
		Order("start_date ASC, name ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *requirementRepo) Delete(ctx context.Context, clubID, id string) error {
	return r.db.WithContext(ctx).
		Where("club_id = ? AND requirement_id = ?", clubID, id).
		Delete(&model.Requirement{}).Error
}

func (r *requirementRepo) DeleteByClub(ctx context.Context, clubID string) error {
	return r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Delete(&model.Requirement{}).Error
}
