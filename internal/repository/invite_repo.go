package repository

import (
	"context"

	"gorm.io/gorm"

	"imscaa/backend/internal/model"
)

// InviteRepository 邀请码数据访问接口
type InviteRepository interface {
	Create(ctx context.Context, invite *model.Invite) error
	GetByToken(ctx context.Context, token string) (*model.Invite, error)
	// GetByTokenForUpdate 使用 SELECT ... FOR UPDATE 行级锁查询邀请码，防止并发兑换超额
	GetByTokenForUpdate(ctx context.Context, token string) (*model.Invite, error)
	IncrementUsedCount(ctx context.Context, inviteID, userID string) error
	ListByClub(ctx context.Context, clubID string) ([]model.Invite, error)
}

type inviteRepo struct {
	db *gorm.DB
}

// NewInviteRepo 创建 InviteRepository 实例
func NewInviteRepo(db *gorm.DB) InviteRepository {
	return &inviteRepo{db: db}
}

func (r *inviteRepo) Create(ctx context.Context, invite *model.Invite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

// GetByToken 根据令牌查询（只读校验用）
func (r *inviteRepo) GetByToken(ctx context.Context, token string) (*model.Invite, error) {
	var invite model.Invite
	err := r.db.WithContext(ctx).
		Preload("Club").
		Where("token = ?", token).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// GetByTokenForUpdate 使用 SELECT ... FOR UPDATE 行级锁查询邀请码
// 必须在已有事务的 *gorm.DB 上调用（通过 Repository.WithTx 注入事务连接）
func (r *inviteRepo) GetByTokenForUpdate(ctx context.Context, token string) (*model.Invite, error) {
	var invite model.Invite
	err := r.db.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		Where("token = ?", token).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// IncrementUsedCount 原子递增已用名额
func (r *inviteRepo) IncrementUsedCount(ctx context.Context, inviteID, userID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Invite{}).
		Where("invite_id = ?", inviteID).
		Updates(map[string]interface{}{
			"used_count": gorm.Expr("used_count + 1"),
			"updated_by": userID,
		}).Error
}

func (r *inviteRepo) ListByClub(ctx context.Context, clubID string) ([]model.Invite, error) {
	var invites []model.Invite
	err := r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}
