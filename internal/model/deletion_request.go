package model

import "time"

// ── 删除申请枚举 ──

// 申请目标类型（封闭枚举）
const (
	DeletionTypeMember      = "member"
	DeletionTypeRequirement = "requirement"
	DeletionTypeClub        = "club"
	DeletionTypeTransaction = "transaction"
)

// ValidDeletionType 判断目标类型是否合法
func ValidDeletionType(t string) bool {
	switch t {
	case DeletionTypeMember, DeletionTypeRequirement, DeletionTypeClub, DeletionTypeTransaction:
		return true
	}
	return false
}

// 申请状态：pending 恰好迁移一次到某个终态，终态不可变
const (
	DeletionStatusPending  = "pending"
	DeletionStatusApproved = "approved"
	DeletionStatusDenied   = "denied"
	DeletionStatusCanceled = "canceled"
)

// DeletionRequest 删除申请表 — 对应 deletion_requests
// 守护破坏性操作的状态机：提交后须由指导老师审批才会真正执行删除
type DeletionRequest struct {
	RequestID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	ClubID      string     `gorm:"type:uuid;not null"                             json:"club_id"`
	Type        string     `gorm:"type:varchar(20);not null"                      json:"type"`
	TargetID    string     `gorm:"type:uuid;not null"                             json:"target_id"`
	RequestedBy string     `gorm:"type:uuid;not null"                             json:"requested_by"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	ApprovedBy  *string    `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	Reason      string     `gorm:"type:varchar(500);not null"                     json:"reason"`
	BaseModel
}

// TableName 指定表名
func (DeletionRequest) TableName() string { return "deletion_requests" }
