package repository

import (
	"context"

	"gorm.io/gorm"

	"imscaa/backend/internal/model"
)

// CredentialRepository 识别凭证数据访问接口
type CredentialRepository interface {
	Create(ctx context.Context, cred *model.Credential) error
	GetActiveByUser(ctx context.Context, userID string) (*model.Credential, error)
	GetActiveByData(ctx context.Context, clubID, opaqueData string) (*model.Credential, error)
	ExistsByData(ctx context.Context, opaqueData string) (bool, error)
	DeactivateAllByUser(ctx context.Context, userID string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByClub(ctx context.Context, clubID string) error
}

type credentialRepo struct {
	db *gorm.DB
}

// NewCredentialRepo 创建 CredentialRepository 实例
func NewCredentialRepo(db *gorm.DB) CredentialRepository {
	return &credentialRepo{db: db}
}

func (r *credentialRepo) Create(ctx context.Context, cred *model.Credential) error {
	return r.db.WithContext(ctx).Create(cred).Error
}

func (r *credentialRepo) GetActiveByUser(ctx context.Context, userID string) (*model.Credential, error) {
	var cred model.Credential
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// GetActiveByData 按 payload 解析凭证，限定社团范围；跨社团等同于不存在
func (r *credentialRepo) GetActiveByData(ctx context.Context, clubID, opaqueData string) (*model.Credential, error) {
	var cred model.Credential
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("club_id = ? AND opaque_data = ? AND is_active = ?", clubID, opaqueData, true).
		First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// ExistsByData 全局唯一性检查（含已停用的历史凭证）
func (r *credentialRepo) ExistsByData(ctx context.Context, opaqueData string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Credential{}).
		Where("opaque_data = ?", opaqueData).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeactivateAllByUser 软停用成员的全部启用凭证（历史保留）
func (r *credentialRepo) DeactivateAllByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Credential{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}

func (r *credentialRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Credential{}).Error
}

func (r *credentialRepo) DeleteByClub(ctx context.Context, clubID string) error {
	return r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Delete(&model.Credential{}).Error
}
