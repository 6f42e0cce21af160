package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Club            ClubRepository
	User            UserRepository
	Invite          InviteRepository
	DeletionRequest DeletionRequestRepository
	Requirement     RequirementRepository
	TimeSlot        TimeSlotRepository
	Credential      CredentialRepository
	Attendance      AttendanceRepository
	Transaction     TransactionRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:              db,
		Club:            NewClubRepo(db),
		User:            NewUserRepo(db),
		Invite:          NewInviteRepo(db),
		DeletionRequest: NewDeletionRequestRepo(db),
		Requirement:     NewRequirementRepo(db),
		TimeSlot:        NewTimeSlotRepo(db),
		Credential:      NewCredentialRepo(db),
		Attendance:      NewAttendanceRepo(db),
		Transaction:     NewTransactionRepo(db),
	}
}

// BeginTx 开启数据库事务
// 所有共享不变式的 check-then-act（邀请码名额、时间段重叠、签到唯一性、
// 删除申请状态迁移、凭证唯一性）必须在单个事务内完成。
// 无底层连接时（内存仓库）返回 nil 事务，调用方据此跳过 Commit/Rollback
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository 聚合
// 行级锁查询（ForUpdate 系列）必须通过 WithTx 注入的事务连接调用
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
