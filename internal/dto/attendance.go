package dto

// ── 签到模块 DTO ──

// VerifyCredentialRequest 凭证核验请求（扫码端提交）
type VerifyCredentialRequest struct {
	OpaqueData string `json:"opaque_data" binding:"required"`
}

// VerifyCredentialResponse 凭证核验响应
// 返回成员身份、今天进行中的活动（含今天启用的时间段）以及该成员今天已有的签到，
// 供扫码端消歧后选择录入目标
type VerifyCredentialResponse struct {
	User            UserResponse               `json:"user"`
	ActiveEvents    []EventWithSlotsResponse   `json:"active_events"`
	AttendanceToday []AttendanceRecordResponse `json:"attendance_today"`
}

// EventWithSlotsResponse 活动及其当天可用时间段
type EventWithSlotsResponse struct {
	RequirementID string             `json:"requirement_id"`
	Name          string             `json:"name"`
	StartDate     string             `json:"start_date"`
	EndDate       string             `json:"end_date"`
	TimeSlots     []TimeSlotResponse `json:"time_slots"`
}

// RecordAttendanceRequest 录入签到请求
type RecordAttendanceRequest struct {
	UserID        string  `json:"user_id"        binding:"required,uuid"`
	RequirementID string  `json:"requirement_id" binding:"required,uuid"`
	TimeSlotID    *string `json:"time_slot_id"   binding:"omitempty,uuid"`
	Status        string  `json:"status"         binding:"required"`
	Notes         string  `json:"notes"          binding:"omitempty,max=500"`
}

// AttendanceListRequest 签到记录列表查询参数
type AttendanceListRequest struct {
	RequirementID string `form:"requirement_id" binding:"required,uuid"`
}

// AttendanceRecordResponse 签到记录响应
type AttendanceRecordResponse struct {
	AttendanceID  string  `json:"attendance_id"`
	UserID        string  `json:"user_id"`
	UserName      string  `json:"user_name,omitempty"`
	RequirementID string  `json:"requirement_id"`
	TimeSlotID    *string `json:"time_slot_id,omitempty"`
	SlotName      string  `json:"slot_name,omitempty"`
	VerifiedBy    string  `json:"verified_by"`
	Status        string  `json:"status"`
	ScanDatetime  string  `json:"scan_datetime"`
	Notes         string  `json:"notes,omitempty"`
}
