package dto

// ── 删除申请模块 DTO ──

// SubmitDeletionRequest 提交删除申请请求
type SubmitDeletionRequest struct {
	Type     string `json:"type"      binding:"required"`
	TargetID string `json:"target_id" binding:"required,uuid"`
	Reason   string `json:"reason"    binding:"required,min=2,max=500"`
}

// DeletionRequestListRequest 删除申请列表查询参数
type DeletionRequestListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved denied canceled"`
}

// DeletionRequestResponse 删除申请响应
type DeletionRequestResponse struct {
	RequestID   string  `json:"request_id"`
	Type        string  `json:"type"`
	TargetID    string  `json:"target_id"`
	RequestedBy string  `json:"requested_by"`
	Status      string  `json:"status"`
	ApprovedBy  *string `json:"approved_by,omitempty"`
	ApprovedAt  *string `json:"approved_at,omitempty"`
	Reason      string  `json:"reason"`
	CreatedAt   string  `json:"created_at"`
}
