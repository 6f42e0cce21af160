package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"imscaa/backend/config"
	"imscaa/backend/internal/dto"
	"imscaa/backend/internal/model"
	"imscaa/backend/internal/repository"
	"imscaa/backend/pkg/token"
)

// ── 邀请码模块业务错误 ──

var (
	ErrInvitePermissionDenied = errors.New("无权签发该角色的邀请码")
	ErrInviteInvalidRole      = errors.New("邀请角色不合法")
	ErrInviteInvalidSignups   = errors.New("注册名额不合法")
	ErrInviteNotFound         = errors.New("邀请码不存在")
	ErrInviteExpired          = errors.New("邀请码已过期")
	ErrInviteExhausted        = errors.New("邀请码名额已用尽")
)

// InviteService 邀请码业务接口
type InviteService interface {
	// Issue 签发邀请码；签发权限由角色层级表决定
	Issue(ctx context.Context, sess *dto.Session, req *dto.IssueInviteRequest) (*dto.InviteResponse, error)
	// Validate 只读校验，供注册前 UI 预检，不改变任何状态
	Validate(ctx context.Context, tokenStr string) (*dto.InviteValidateResponse, error)
	// Redeem 在调用方事务内兑换邀请码：行级锁定、校验过期与名额、递增 used_count。
	// txRepo 必须是 Repository.WithTx 注入的事务连接；兑换与成员创建由调用方
	// 在同一事务内组合提交
	Redeem(ctx context.Context, txRepo *repository.Repository, tokenStr, newUserID string) (*model.Invite, error)
	// List 列出本社团签发过的全部邀请码（审计视图）
	List(ctx context.Context, sess *dto.Session) ([]dto.InviteResponse, error)
}

type inviteService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewInviteService 创建 InviteService 实例
func NewInviteService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) InviteService {
	return &inviteService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── Issue ──────────────────────

func (s *inviteService) Issue(ctx context.Context, sess *dto.Session, req *dto.IssueInviteRequest) (*dto.InviteResponse, error) {
	if !model.ValidRole(req.Role) {
		return nil, ErrInviteInvalidRole
	}
	if req.AllowedSignups < 1 || req.AllowedSignups > s.cfg.Invite.MaxSignups {
		return nil, ErrInviteInvalidSignups
	}

	// 角色层级校验：表外组合一律拒绝
	if !model.CanIssueRole(sess.Role, req.Role) {
		s.logger.Warn("越权签发邀请码被拒绝",
			zap.String("issuer_role", sess.Role),
			zap.String("target_role", req.Role),
			zap.String("user_id", sess.UserID),
		)
		return nil, ErrInvitePermissionDenied
	}

	expiry := s.cfg.Invite.DefaultExpiry
	if req.ExpiresInHours > 0 {
		expiry = time.Duration(req.ExpiresInHours) * time.Hour
	}

	// 256 bit 随机令牌，熵足够大，无需唯一性重试
	tok, err := token.NewInviteToken()
	if err != nil {
		s.logger.Error("生成邀请码令牌失败", zap.Error(err))
		return nil, err
	}

	invite := &model.Invite{
		ClubID:         sess.ClubID,
		Token:          tok,
		Role:           req.Role,
		AllowedSignups: req.AllowedSignups,
		UsedCount:      0,
		ExpiresAt:      time.Now().Add(expiry),
	}
	invite.CreatedBy = &sess.UserID
	invite.UpdatedBy = &sess.UserID

	if err := s.repo.Invite.Create(ctx, invite); err != nil {
		s.logger.Error("创建邀请码失败", zap.Error(err))
		return nil, err
	}

	return s.toInviteResponse(invite), nil
}

// ────────────────────── Validate ──────────────────────

func (s *inviteService) Validate(ctx context.Context, tokenStr string) (*dto.InviteValidateResponse, error) {
	invite, err := s.repo.Invite.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.InviteValidateResponse{Valid: false, Error: "not_found"}, nil
		}
		s.logger.Error("查询邀请码失败", zap.Error(err))
		return nil, err
	}

	if invite.Expired(time.Now()) {
		return &dto.InviteValidateResponse{Valid: false, Error: "expired"}, nil
	}
	if invite.Exhausted() {
		return &dto.InviteValidateResponse{Valid: false, Error: "exhausted"}, nil
	}

	resp := &dto.InviteValidateResponse{Valid: true, Role: invite.Role}
	if invite.Club != nil {
		resp.ClubName = invite.Club.Name
	}
	return resp, nil
}

// ────────────────────── Redeem ──────────────────────

func (s *inviteService) Redeem(ctx context.Context, txRepo *repository.Repository, tokenStr, newUserID string) (*model.Invite, error) {
	// 行级锁：并发兑换 allowed_signups=1 的邀请码时恰好一个成功
	invite, err := txRepo.Invite.GetByTokenForUpdate(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		s.logger.Error("锁定邀请码失败", zap.Error(err))
		return nil, err
	}

	if invite.Expired(time.Now()) {
		return nil, ErrInviteExpired
	}
	if invite.Exhausted() {
		return nil, ErrInviteExhausted
	}

	if err := txRepo.Invite.IncrementUsedCount(ctx, invite.InviteID, newUserID); err != nil {
		s.logger.Error("递增邀请码名额失败", zap.String("invite_id", invite.InviteID), zap.Error(err))
		return nil, err
	}
	invite.UsedCount++

	return invite, nil
}

// ────────────────────── List ──────────────────────

func (s *inviteService) List(ctx context.Context, sess *dto.Session) ([]dto.InviteResponse, error) {
	invites, err := s.repo.Invite.ListByClub(ctx, sess.ClubID)
	if err != nil {
		s.logger.Error("列出邀请码失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.InviteResponse, 0, len(invites))
	for i := range invites {
		result = append(result, *s.toInviteResponse(&invites[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *inviteService) toInviteResponse(invite *model.Invite) *dto.InviteResponse {
	return &dto.InviteResponse{
		InviteID:       invite.InviteID,
		Token:          invite.Token,
		InviteURL:      fmt.Sprintf("%s/register?token=%s", s.cfg.Server.BaseURL, invite.Token),
		Role:           invite.Role,
		AllowedSignups: invite.AllowedSignups,
		UsedCount:      invite.UsedCount,
		ExpiresAt:      invite.ExpiresAt.Format(time.RFC3339),
		CreatedAt:      invite.CreatedAt.Format(time.RFC3339),
	}
}
