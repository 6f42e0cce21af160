package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"imscaa/backend/config"
	"imscaa/backend/internal/dto"
	"imscaa/backend/internal/model"
	"imscaa/backend/internal/repository"
	"imscaa/backend/pkg/jwt"
	"imscaa/backend/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailTaken         = errors.New("邮箱已被注册")
	ErrRefreshInvalid     = errors.New("刷新令牌无效")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Register 凭邀请码注册：兑换与成员创建在同一事务内提交，
	// 保证单名额邀请码在并发注册下恰好录取一人
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentUser(ctx context.Context, sess *dto.Session) (*dto.UserDetailResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	inviteSvc InviteService
	jwtMgr    *jwt.Manager
	rdb       *redis.Client
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	inviteSvc InviteService,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		inviteSvc: inviteSvc,
		jwtMgr:    jwtMgr,
		rdb:       rdb,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.buildTokenResponse(user)
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	// 邮箱占用预检（最终一致性由 (club_id, email) 唯一索引兜底）
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询邮箱占用失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	// 事务：锁定并兑换邀请码 + 创建成员，任一步失败整体回滚
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

	// 应用侧生成主键：兑换记录的 updated_by 需要在创建前引用新成员 ID
	user := &model.User{
		UserID:       uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	invite, err := s.inviteSvc.Redeem(ctx, txRepo, req.Token, user.UserID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	// 角色与社团归属由邀请码决定
	user.ClubID = invite.ClubID
	user.Role = invite.Role

	if err := txRepo.User.Create(ctx, user); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建成员失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交注册事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("邀请注册成功",
		zap.String("user_id", user.UserID),
		zap.String("club_id", user.ClubID),
		zap.String("role", user.Role),
	)

	// Club 关联在事务外补读（仅用于响应展示）
	if full, err := s.repo.User.GetByID(ctx, user.ClubID, user.UserID); err == nil {
		user = full
	}

	return s.buildTokenResponse(user)
}

// ────────────────────── RefreshToken ──────────────────────

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrRefreshInvalid
	}

	// 已注销的 refresh token 不再可用
	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err == nil && blacklisted {
			return nil, ErrRefreshInvalid
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.ClubID, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	return s.buildTokenResponse(user)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil {
		return nil // Redis 不可用时降级为无黑名单注销
	}
	return s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt))
}

// ────────────────────── GetCurrentUser ──────────────────────

func (s *authService) GetCurrentUser(ctx context.Context, sess *dto.Session) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, sess.ClubID, sess.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.UserDetailResponse{
		ID:        user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		ClubID:    user.ClubID,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.Club != nil {
		resp.ClubName = user.Club.Name
	}
	return resp, nil
}

// ── 内部辅助方法 ──

func (s *authService) buildTokenResponse(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, user.ClubID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, user.ClubID)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User: dto.UserResponse{
			ID:     user.UserID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   user.Role,
			ClubID: user.ClubID,
		},
	}
	if user.Club != nil {
		resp.User.ClubName = user.Club.Name
	}
	return resp, nil
}
