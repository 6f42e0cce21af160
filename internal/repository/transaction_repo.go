package repository

import (
	"context"

	"gorm.io/gorm"

	"imscaa/backend/internal/model"
)

// TransactionRepository 费用流水数据访问接口
// 记账读写由费用模块负责；核心模块只需存在性检查与级联删除
type TransactionRepository interface {
	GetByID(ctx context.Context, clubID, id string) (*model.Transaction, error)
	Delete(ctx context.Context, clubID, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByClub(ctx context.Context, clubID string) error
}

type transactionRepo struct {
	db *gorm.DB
}

// NewTransactionRepo 创建 TransactionRepository 实例
func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) GetByID(ctx context.Context, clubID, id string) (*model.Transaction, error) {
	var tx model.Transaction
	err := r.db.WithContext(ctx).
		Where("club_id = ? AND transaction_id = ?", clubID, id).
		First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepo) Delete(ctx context.Context, clubID, id string) error {
	return r.db.WithContext(ctx).
		Where("club_id = ? AND transaction_id = ?", clubID, id).
		Delete(&model.Transaction{}).Error
}

// DeleteByUser 删除成员的全部流水（成员删除级联的第一步）
func (r *transactionRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Transaction{}).Error
}

func (r *transactionRepo) DeleteByClub(ctx context.Context, clubID string) error {
	return r.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Delete(&model.Transaction{}).Error
}
