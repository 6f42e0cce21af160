package model

// Transaction 费用流水表 — 对应 transactions
// 记账逻辑由费用模块维护；核心模块只在删除审批级联中触碰这些行
type Transaction struct {
	TransactionID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"transaction_id"`
	ClubID        string  `gorm:"type:uuid;not null"                             json:"club_id"`
	UserID        string  `gorm:"type:uuid;not null"                             json:"user_id"`
	RequirementID *string `gorm:"type:uuid"                                      json:"requirement_id,omitempty"`
	Amount        float64 `gorm:"type:numeric(12,2);not null"                    json:"amount"`
	Remarks       string  `gorm:"type:varchar(500)"                              json:"remarks,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Transaction) TableName() string { return "transactions" }
