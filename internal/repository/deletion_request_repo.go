package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"imscaa/backend/internal/model"
)

// DeletionRequestRepository 删除申请数据访问接口
type DeletionRequestRepository interface {
	Create(ctx context.Context, req *model.DeletionRequest) error
	GetByID(ctx context.Context, clubID, id string) (*model.DeletionRequest, error)
	// GetByIDForUpdate 行级锁查询，保证状态迁移恰好发生一次
	GetByIDForUpdate(ctx context.Context, clubID, id string) (*model.DeletionRequest, error)
	UpdateStatus(ctx context.Context, id, status string, approvedBy *string, approvedAt *time.Time) error
	List(ctx context.Context, clubID, status string) ([]model.DeletionRequest, error)
}

type deletionRequestRepo struct {
	db *gorm.DB
}

// NewDeletionRequestRepo 创建 DeletionRequestRepository 实例
func NewDeletionRequestRepo(db *gorm.DB) DeletionRequestRepository {
	return &deletionRequestRepo{db: db}
}

func (r *deletionRequestRepo) Create(ctx context.Context, req *model.DeletionRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *deletionRequestRepo) GetByID(ctx context.Context, clubID, id string) (*model.DeletionRequest, error) {
	var req model.DeletionRequest
	err := r.db.WithContext(ctx).
		Where("club_id = ? AND request_id = ?", clubID, id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByIDForUpdate 使用 SELECT ... FOR UPDATE 行级锁查询删除申请
// 必须在已有事务的 *gorm.DB 上调用（通过 Repository.WithTx 注入事务连接）
func (r *deletionRequestRepo) GetByIDForUpdate(ctx context.Context, clubID, id string) (*model.DeletionRequest, error) {
	var req model.DeletionRequest
	err := r.db.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		Where("club_id = ? AND request_id = ?", clubID, id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *deletionRequestRepo) UpdateStatus(ctx context.Context, id, status string, approvedBy *string, approvedAt *time.Time) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if approvedBy != nil {
		updates["approved_by"] = *approvedBy
	}
	if approvedAt != nil {
		updates["approved_at"] = *approvedAt
	}
	return r.db.WithContext(ctx).
		Model(&model.DeletionRequest{}).
		Where("request_id = ?", id).
		Updates(updates).Error
}

func (r *deletionRequestRepo) List(ctx context.Context, clubID, status string) ([]model.DeletionRequest, error) {
	db := r.db.WithContext(ctx).Where("club_id = ?", clubID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var reqs []model.DeletionRequest
	err := db.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}
