package dto

// ── 时间段模块 DTO ──

// CreateTimeSlotRequest 创建签到时间段请求
type CreateTimeSlotRequest struct {
	RequirementID string `json:"requirement_id" binding:"required,uuid"`
	SlotName      string `json:"slot_name"      binding:"required,min=2,max=100"`
	StartTime     string `json:"start_time"     binding:"required"` // "09:00"
	EndTime       string `json:"end_time"       binding:"required"` // "10:00"
	Date          string `json:"date"           binding:"required"` // "2024-01-01"
}

// TimeSlotListRequest 时间段列表查询参数
type TimeSlotListRequest struct {
	RequirementID string `form:"requirement_id" binding:"omitempty,uuid"`
	ActiveOnly    bool   `form:"active_only"`
}

// TimeSlotResponse 时间段信息响应
type TimeSlotResponse struct {
	SlotID        string `json:"slot_id"`
	RequirementID string `json:"requirement_id"`
	SlotName      string `json:"slot_name"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Date          string `json:"date"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}
