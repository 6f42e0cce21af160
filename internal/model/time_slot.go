package model

import (
	"time"

	"gorm.io/gorm"
)

// TimeSlot 签到时间段表 — 对应 time_slots
// 同一 (requirement_id, date) 下启用中的时间段互不重叠；
// 一旦被签到记录引用只停用不物理删除
type TimeSlot struct {
	SlotID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	RequirementID string    `gorm:"type:uuid;not null"                             json:"requirement_id"`
	SlotName      string    `gorm:"type:varchar(100);not null"                     json:"slot_name"`
	StartTime     string    `gorm:"type:time;not null"                             json:"start_time"` // HH:MM
	EndTime       string    `gorm:"type:time;not null"                             json:"end_time"`   // HH:MM
	Date          time.Time `gorm:"type:date;not null"                             json:"date"`
	IsActive      bool      `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Requirement *Requirement `gorm:"foreignKey:RequirementID;references:RequirementID" json:"requirement,omitempty"`
}

// TableName 指定表名
func (TimeSlot) TableName() string { return "time_slots" }

// AfterFind 把 TIME 列扫描出的 "HH:MM:SS" 归一化为 "HH:MM"。
// 请求侧一律是 HH:MM，两种宽度混在一起会让字典序区间比较失真
func (t *TimeSlot) AfterFind(*gorm.DB) error {
	t.StartTime = normalizeClock(t.StartTime)
	t.EndTime = normalizeClock(t.EndTime)
	return nil
}

func normalizeClock(s string) string {
	if len(s) > len(TimeLayout) {
		return s[:len(TimeLayout)]
	}
	return s
}
