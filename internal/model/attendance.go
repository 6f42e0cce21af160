package model

import "time"

// 签到状态
const (
	AttendanceStatusPresent = "present"
	AttendanceStatusLate    = "late"
	AttendanceStatusExcused = "excused"
)

// ValidAttendanceStatus 判断签到状态是否合法
func ValidAttendanceStatus(s string) bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	}
	return false
}

// AttendanceRecord 签到记录表 — 对应 attendance_records
// (user_id, requirement_id, time_slot_id) 唯一；time_slot_id 为 NULL 视为独立键，
// 即同一成员同一活动的两条无时段记录同样冲突。记录创建后不可变
type AttendanceRecord struct {
	AttendanceID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	ClubID        string    `gorm:"type:uuid;not null"                             json:"club_id"`
	UserID        string    `gorm:"type:uuid;not null"                             json:"user_id"`
	RequirementID string    `gorm:"type:uuid;not null"                             json:"requirement_id"`
	TimeSlotID    *string   `gorm:"type:uuid"                                      json:"time_slot_id,omitempty"`
	VerifiedBy    string    `gorm:"type:uuid;not null"                             json:"verified_by"`
	Status        string    `gorm:"type:varchar(20);not null"                      json:"status"`
	ScanDatetime  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"scan_datetime"`
	Notes         string    `gorm:"type:varchar(500)"                              json:"notes,omitempty"`

	// 关联
	User     *User     `gorm:"foreignKey:UserID;references:UserID"    json:"user,omitempty"`
	TimeSlot *TimeSlot `gorm:"foreignKey:TimeSlotID;references:SlotID" json:"time_slot,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }
