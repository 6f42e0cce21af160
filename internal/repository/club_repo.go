package repository

import (
	"context"

	"gorm.io/gorm"

	"imscaa/backend/internal/model"
)

// ClubRepository 社团数据访问接口
type ClubRepository interface {
	Create(ctx context.Context, club *model.Club) error
	GetByID(ctx context.Context, id string) (*model.Club, error)
	Delete(ctx context.Context, id string) error
}

type clubRepo struct {
	db *gorm.DB
}

// NewClubRepo 创建 ClubRepository 实例
func NewClubRepo(db *gorm.DB) ClubRepository {
	return &clubRepo{db: db}
}

func (r *clubRepo) Create(ctx context.Context, club *model.Club) error {
	return r.db.WithContext(ctx).Create(club).Error
}

func (r *clubRepo) GetByID(ctx context.Context, id string) (*model.Club, error) {
	var club model.Club
	err := r.db.WithContext(ctx).
		Where("club_id = ?", id).
		First(&club).Error
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// Delete 物理删除社团（仅在删除审批级联的最后一步调用）
func (r *clubRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("club_id = ?", id).
		Delete(&model.Club{}).Error
}
