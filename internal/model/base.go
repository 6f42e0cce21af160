package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// 时间与日期的统一存储格式
// TimeSlot 的 start/end 以 "HH:MM" 字符串承载（TIME 列），date 以 "YYYY-MM-DD"（DATE 列）
const (
	TimeLayout = "15:04"
	DateLayout = "2006-01-02"
)
