package model

import "time"

// 活动要求类型
const (
	RequirementKindEvent    = "event"
	RequirementKindActivity = "activity"
	RequirementKindFee      = "fee"
)

// Requirement 社团要求表 — 对应 requirements
// 活动（event）类要求是签到的挂靠点；activity / fee 由花名册与费用模块维护
type Requirement struct {
	RequirementID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"requirement_id"`
	ClubID        string    `gorm:"type:uuid;not null"                             json:"club_id"`
	Name          string    `gorm:"type:varchar(200);not null"                     json:"name"`
	Kind          string    `gorm:"type:varchar(20);not null"                      json:"kind"`
	StartDate     time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate       time.Time `gorm:"type:date;not null"                             json:"end_date"`
	IsActive      bool      `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Requirement) TableName() string { return "requirements" }

// ActiveOn 判断活动在给定日期是否进行中
func (r *Requirement) ActiveOn(date time.Time) bool {
	if !r.IsActive {
		return false
	}
	d := date.Format(DateLayout)
	return r.StartDate.Format(DateLayout) <= d && d <= r.EndDate.Format(DateLayout)
}
