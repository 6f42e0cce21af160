package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"imscaa/backend/internal/dto"
	"imscaa/backend/internal/model"
	"imscaa/backend/internal/repository"
	"imscaa/backend/pkg/token"
)

// ── 识别凭证模块业务错误 ──

var (
	ErrCredentialNotFound         = errors.New("识别凭证不存在")
	ErrCredentialExhausted        = errors.New("凭证生成重试次数耗尽")
	ErrCredentialPermissionDenied = errors.New("没有权限操作该成员的凭证")
)

// 随机数据碰撞时的生成重试上限。正常熵源下碰到一次都极罕见，
// 连续十次视为熵源故障直接报错
const credentialMaxAttempts = 10

// CredentialService 识别凭证业务接口
type CredentialService interface {
	Generate(ctx context.Context, sess *dto.Session, userID string) (*dto.CredentialResponse, error)
	Regenerate(ctx context.Context, sess *dto.Session, userID string) (*dto.CredentialResponse, error)
	GetActive(ctx context.Context, sess *dto.Session, userID string) (*dto.CredentialResponse, error)
}

type credentialService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCredentialService 创建 CredentialService 实例
func NewCredentialService(repo *repository.Repository, logger *zap.Logger) CredentialService {
	return &credentialService{repo: repo, logger: logger}
}

// ────────────────────── Generate ──────────────────────

func (s *credentialService) Generate(ctx context.Context, sess *dto.Session, userID string) (*dto.CredentialResponse, error) {
	if err := s.checkOperatePermission(ctx, sess, userID); err != nil {
		return nil, err
	}

	cred, err := s.generateUnique(ctx, s.repo, sess.ClubID, userID)
	if err != nil {
		// 并发生成撞上活跃凭证唯一索引，读回先提交方的凭证返回
		if repository.IsUniqueViolation(err) {
			if winner, readErr := s.repo.Credential.GetActiveByUser(ctx, userID); readErr == nil {
				return s.toCredentialResponse(winner), nil
			}
		}
		return nil, err
	}

	return s.toCredentialResponse(cred), nil
}

// ────────────────────── Regenerate ──────────────────────

// Regenerate 重新生成凭证：同一事务内软停用所有旧凭证再插入新凭证，
// 外部不会观察到"无凭证"或"双活跃凭证"的中间态
func (s *credentialService) Regenerate(ctx context.Context, sess *dto.Session, userID string) (*dto.CredentialResponse, error) {
	if err := s.checkOperatePermission(ctx, sess, userID); err != nil {
		return nil, err
	}

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

	if err := txRepo.Credential.DeactivateAllByUser(ctx, userID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("停用旧凭证失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	cred, err := s.generateUnique(ctx, txRepo, sess.ClubID, userID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		// 事务已因唯一约束冲突中止，回滚后在新连接上读回先提交方的凭证
		if repository.IsUniqueViolation(err) {
			if winner, readErr := s.repo.Credential.GetActiveByUser(ctx, userID); readErr == nil {
				return s.toCredentialResponse(winner), nil
			}
		}
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("凭证已重新生成",
		zap.String("user_id", userID),
		zap.String("qr_id", cred.QRID))

	return s.toCredentialResponse(cred), nil
}

// ────────────────────── GetActive ──────────────────────

func (s *credentialService) GetActive(ctx context.Context, sess *dto.Session, userID string) (*dto.CredentialResponse, error) {
	if err := s.checkOperatePermission(ctx, sess, userID); err != nil {
		return nil, err
	}

	cred, err := s.repo.Credential.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredentialNotFound
		}
		s.logger.Error("查询凭证失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return s.toCredentialResponse(cred), nil
}

// ── 内部辅助方法 ──

// checkOperatePermission 本人或干部（adviser/president/officer）可操作；
// 目标成员必须属于调用者所在社团
func (s *credentialService) checkOperatePermission(ctx context.Context, sess *dto.Session, userID string) error {
	if sess.UserID != userID && !model.CanVerifyAttendance(sess.Role) {
		return ErrCredentialPermissionDenied
	}

	if _, err := s.repo.User.GetByID(ctx, sess.ClubID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询成员失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	return nil
}

// generateUnique 生成全局唯一的凭证数据并落库。
// 随机碰撞时有界重试，重试耗尽返回 ErrCredentialExhausted
func (s *credentialService) generateUnique(ctx context.Context, repo *repository.Repository, clubID, userID string) (*model.Credential, error) {
	for attempt := 0; attempt < credentialMaxAttempts; attempt++ {
		data, err := token.NewCredentialData(clubID, userID)
		if err != nil {
			s.logger.Error("生成凭证数据失败", zap.Error(err))
			return nil, err
		}

		exists, err := repo.Credential.ExistsByData(ctx, data)
		if err != nil {
			s.logger.Error("查询凭证唯一性失败", zap.Error(err))
			return nil, err
		}
		if exists {
			s.logger.Warn("凭证数据碰撞，重试",
				zap.String("user_id", userID),
				zap.Int("attempt", attempt+1))
			continue
		}

		cred := &model.Credential{
			UserID:      userID,
			ClubID:      clubID,
			OpaqueData:  data,
			IsActive:    true,
			GeneratedAt: time.Now(),
		}
		if err := repo.Credential.Create(ctx, cred); err != nil {
			if !repository.IsUniqueViolation(err) {
				s.logger.Error("创建凭证失败", zap.String("user_id", userID), zap.Error(err))
			}
			return nil, err
		}
		return cred, nil
	}

	s.logger.Error("凭证生成重试耗尽", zap.String("user_id", userID))
	return nil, ErrCredentialExhausted
}

func (s *credentialService) toCredentialResponse(cred *model.Credential) *dto.CredentialResponse {
	return &dto.CredentialResponse{
		QRID:        cred.QRID,
		UserID:      cred.UserID,
		OpaqueData:  cred.OpaqueData,
		IsActive:    cred.IsActive,
		GeneratedAt: cred.GeneratedAt.UTC().Format(time.RFC3339),
	}
}
