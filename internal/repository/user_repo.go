package repository

import (
	"context"

	"gorm.io/gorm"

	"imscaa/backend/internal/model"
)

// UserRepository 成员数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, clubID, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, clubID string, offset, limit int) ([]model.User, int64, error)
	Delete(ctx context.Context, clubID, id string) error
	DeleteByClub(ctx context.Context, clubID string) error
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID 按社团范围查询成员；跨社团访问等同于不存在
func (r *userRepo) GetByID(ctx context.Context, clubID, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Club").
		Where("club_id = ? AND user_id = ?", clubID, id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 登录入口使用，不限定社团（邮箱在社团内唯一）
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Club").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) List(ctx context.Context, clubID string, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{}).Where("club_id = ?", clubID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, total, err
}

// Delete 物理删除成员（仅在删除审批级联内调用）
func (r *userRepo) Delete(ctx context.Context, clubID, id string) error {
	return r.db.WithContext(ctx).
		Where("club_id = ? AND user_id = ?", clubID, id).
		Delete(&model.User{}).Error
}

func (r *userRepo) DeleteByClub(ctx context.Context, clubID string) error {
	return r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Delete(&model.User{}).Error
}
