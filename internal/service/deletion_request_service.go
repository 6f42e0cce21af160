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
)

// ── 删除申请模块业务错误 ──

var (
	ErrRequestNotFound          = errors.New("删除申请不存在")
	ErrRequestAlreadyProcessed  = errors.New("删除申请已被处理")
	ErrDeletionTypeInvalid      = errors.New("删除目标类型不合法")
	ErrDeletionTargetNotFound   = errors.New("删除目标不存在")
	ErrDeletionPermissionDenied = errors.New("只有指导老师可以审批删除申请")
	ErrNotRequestOwner          = errors.New("只有申请人本人可以撤销申请")
)

// DeletionRequestService 删除申请业务接口
// 状态机：pending 恰好迁移一次到 approved / denied / canceled，终态不可变
type DeletionRequestService interface {
	Submit(ctx context.Context, sess *dto.Session, req *dto.SubmitDeletionRequest) (*dto.DeletionRequestResponse, error)
	Approve(ctx context.Context, sess *dto.Session, id string) (*dto.DeletionRequestResponse, error)
	Deny(ctx context.Context, sess *dto.Session, id string) (*dto.DeletionRequestResponse, error)
	Cancel(ctx context.Context, sess *dto.Session, id string) (*dto.DeletionRequestResponse, error)
	List(ctx context.Context, sess *dto.Session, status string) ([]dto.DeletionRequestResponse, error)
}

type deletionRequestService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDeletionRequestService 创建 DeletionRequestService 实例
func NewDeletionRequestService(repo *repository.Repository, logger *zap.Logger) DeletionRequestService {
	return &deletionRequestService{repo: repo, logger: logger}
}

// ────────────────────── Submit ──────────────────────

func (s *deletionRequestService) Submit(ctx context.Context, sess *dto.Session, req *dto.SubmitDeletionRequest) (*dto.DeletionRequestResponse, error) {
	if !model.ValidDeletionType(req.Type) {
		return nil, ErrDeletionTypeInvalid
	}

	// 目标必须存在且属于申请人所在社团
	if err := s.checkTargetExists(ctx, sess.ClubID, req.Type, req.TargetID); err != nil {
		return nil, err
	}

	dr := &model.DeletionRequest{
		ClubID:      sess.ClubID,
		Type:        req.Type,
		TargetID:    req.TargetID,
		RequestedBy: sess.UserID,
		Status:      model.DeletionStatusPending,
		Reason:      req.Reason,
	}
	dr.CreatedBy = &sess.UserID
	dr.UpdatedBy = &sess.UserID

	if err := s.repo.DeletionRequest.Create(ctx, dr); err != nil {
		s.logger.Error("创建删除申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("删除申请已提交",
		zap.String("request_id", dr.RequestID),
		zap.String("type", dr.Type),
		zap.String("target_id", dr.TargetID))

	return s.toDeletionRequestResponse(dr), nil
}

// ────────────────────── Approve ──────────────────────

// Approve 审批通过并执行级联删除。删除与状态迁移在同一事务内提交，
// 外部永远不会观察到"已删除但仍 pending"或"已 approved 但目标仍在"的中间态。
func (s *deletionRequestService) Approve(ctx context.Context, sess *dto.Session, id string) (*dto.DeletionRequestResponse, error) {
	if sess.Role != model.RoleAdviser {
		return nil, ErrDeletionPermissionDenied
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

	dr, err := txRepo.DeletionRequest.GetByIDForUpdate(ctx, sess.ClubID, id)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询删除申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if dr.Status != model.DeletionStatusPending {
		if tx != nil {
			tx.Rollback()
		}
		return nil, ErrRequestAlreadyProcessed
	}

	if err := s.executeCascade(ctx, txRepo, dr); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("执行级联删除失败",
			zap.String("request_id", dr.RequestID),
			zap.String("type", dr.Type),
			zap.Error(err))
		return nil, err
	}

	now := time.Now()
	if err := txRepo.DeletionRequest.UpdateStatus(ctx, dr.RequestID, model.DeletionStatusApproved, &sess.UserID, &now); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("更新申请状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("删除申请已批准",
		zap.String("request_id", dr.RequestID),
		zap.String("type", dr.Type),
		zap.String("approved_by", sess.UserID))

	dr.Status = model.DeletionStatusApproved
	dr.ApprovedBy = &sess.UserID
	dr.ApprovedAt = &now
	return s.toDeletionRequestResponse(dr), nil
}

// ────────────────────── Deny ──────────────────────

func (s *deletionRequestService) Deny(ctx context.Context, sess *dto.Session, id string) (*dto.DeletionRequestResponse, error) {
	if sess.Role != model.RoleAdviser {
		return nil, ErrDeletionPermissionDenied
	}

	return s.transition(ctx, sess, id, model.DeletionStatusDenied, nil)
}

// ────────────────────── Cancel ──────────────────────

func (s *deletionRequestService) Cancel(ctx context.Context, sess *dto.Session, id string) (*dto.DeletionRequestResponse, error) {
	owner := &sess.UserID
	return s.transition(ctx, sess, id, model.DeletionStatusCanceled, owner)
}

// ────────────────────── List ──────────────────────

func (s *deletionRequestService) List(ctx context.Context, sess *dto.Session, status string) ([]dto.DeletionRequestResponse, error) {
	reqs, err := s.repo.DeletionRequest.List(ctx, sess.ClubID, status)
	if err != nil {
		s.logger.Error("列出删除申请失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DeletionRequestResponse, 0, len(reqs))
	for i := range reqs {
		result = append(result, *s.toDeletionRequestResponse(&reqs[i]))
	}

	return result, nil
}

// ── 内部辅助方法 ──

// transition 执行无副作用的状态迁移（deny / cancel）。
// requiredOwner 非 nil 时要求申请人与调用者一致。
func (s *deletionRequestService) transition(ctx context.Context, sess *dto.Session, id, target string, requiredOwner *string) (*dto.DeletionRequestResponse, error) {
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

	dr, err := txRepo.DeletionRequest.GetByIDForUpdate(ctx, sess.ClubID, id)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询删除申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if requiredOwner != nil && dr.RequestedBy != *requiredOwner {
		if tx != nil {
			tx.Rollback()
		}
		return nil, ErrNotRequestOwner
	}

	if dr.Status != model.DeletionStatusPending {
		if tx != nil {
			tx.Rollback()
		}
		return nil, ErrRequestAlreadyProcessed
	}

	var approvedBy *string
	var approvedAt *time.Time
	if target == model.DeletionStatusDenied {
		now := time.Now()
		approvedBy = &sess.UserID
		approvedAt = &now
	}

	if err := txRepo.DeletionRequest.UpdateStatus(ctx, dr.RequestID, target, approvedBy, approvedAt); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("更新申请状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	dr.Status = target
	dr.ApprovedBy = approvedBy
	dr.ApprovedAt = approvedAt
	return s.toDeletionRequestResponse(dr), nil
}

func (s *deletionRequestService) checkTargetExists(ctx context.Context, clubID, targetType, targetID string) error {
	var err error
	switch targetType {
	case model.DeletionTypeMember:
		_, err = s.repo.User.GetByID(ctx, clubID, targetID)
	case model.DeletionTypeRequirement:
		_, err = s.repo.Requirement.GetByID(ctx, clubID, targetID)
	case model.DeletionTypeTransaction:
		_, err = s.repo.Transaction.GetByID(ctx, clubID, targetID)
	case model.DeletionTypeClub:
		// 社团删除只能以本社团为目标
		if targetID != clubID {
			return ErrDeletionTargetNotFound
		}
		_, err = s.repo.Club.GetByID(ctx, targetID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDeletionTargetNotFound
		}
		s.logger.Error("查询删除目标失败",
			zap.String("type", targetType),
			zap.String("target_id", targetID),
			zap.Error(err))
		return err
	}
	return nil
}

// executeCascade 按固定顺序执行级联删除：子表在前，目标行最后，
// 全程使用事务内的 txRepo
func (s *deletionRequestService) executeCascade(ctx context.Context, txRepo *repository.Repository, dr *model.DeletionRequest) error {
	switch dr.Type {
	case model.DeletionTypeMember:
		if err := txRepo.Attendance.DeleteByUser(ctx, dr.TargetID); err != nil {
			return err
		}
		if err := txRepo.Credential.DeleteByUser(ctx, dr.TargetID); err != nil {
			return err
		}
		if err := txRepo.Transaction.DeleteByUser(ctx, dr.TargetID); err != nil {
			return err
		}
		return txRepo.User.Delete(ctx, dr.ClubID, dr.TargetID)

	case model.DeletionTypeRequirement:
		if err := txRepo.Attendance.DeleteByRequirement(ctx, dr.TargetID); err != nil {
			return err
		}
		if err := txRepo.TimeSlot.DeleteByRequirement(ctx, dr.TargetID); err != nil {
			return err
		}
		return txRepo.Requirement.Delete(ctx, dr.ClubID, dr.TargetID)

	case model.DeletionTypeTransaction:
		return txRepo.Transaction.Delete(ctx, dr.ClubID, dr.TargetID)

	case model.DeletionTypeClub:
		if err := txRepo.Transaction.DeleteByClub(ctx, dr.TargetID); err != nil {
			return err
		}
		if err := txRepo.Attendance.DeleteByClub(ctx, dr.TargetID); err != nil {
			return err
		}
		if err := txRepo.Credential.DeleteByClub(ctx, dr.TargetID); err != nil {
			return err
		}
		if err := txRepo.TimeSlot.DeleteByClub(ctx, dr.TargetID); err != nil {
			return err
		}
		if err := txRepo.Requirement.DeleteByClub(ctx, dr.TargetID); err != nil {
			return err
		}
		// 邀请与删除申请是审计记录，社团删除后原样保留
		if err := txRepo.User.DeleteByClub(ctx, dr.TargetID); err != nil {
			return err
		}
		return txRepo.Club.Delete(ctx, dr.TargetID)
	}

	return ErrDeletionTypeInvalid
}

func (s *deletionRequestService) toDeletionRequestResponse(dr *model.DeletionRequest) *dto.DeletionRequestResponse {
	resp := &dto.DeletionRequestResponse{
		RequestID:   dr.RequestID,
		Type:        dr.Type,
		TargetID:    dr.TargetID,
		RequestedBy: dr.RequestedBy,
		Status:      dr.Status,
		ApprovedBy:  dr.ApprovedBy,
		Reason:      dr.Reason,
		CreatedAt:   dr.CreatedAt.UTC().Format(time.RFC3339),
	}
	if dr.ApprovedAt != nil {
		at := dr.ApprovedAt.UTC().Format(time.RFC3339)
		resp.ApprovedAt = &at
	}
	return resp
}
