package dto

// ── 邀请码模块 DTO ──

// IssueInviteRequest 签发邀请码请求
type IssueInviteRequest struct {
	Role           string `json:"role"            binding:"required"`
	AllowedSignups int    `json:"allowed_signups" binding:"required,min=1"`
	ExpiresInHours int    `json:"expires_in_hours" binding:"omitempty,min=1"` // 缺省时使用配置默认值
}

// InviteResponse 邀请码响应
type InviteResponse struct {
	InviteID       string `json:"invite_id"`
	Token          string `json:"token"`
	InviteURL      string `json:"invite_url"`
	Role           string `json:"role"`
	AllowedSignups int    `json:"allowed_signups"`
	UsedCount      int    `json:"used_count"`
	ExpiresAt      string `json:"expires_at"`
	CreatedAt      string `json:"created_at"`
}

// InviteValidateResponse 邀请码验证响应（注册前 UI 预检，只读）
type InviteValidateResponse struct {
	Valid    bool   `json:"valid"`
	Role     string `json:"role,omitempty"`
	ClubName string `json:"club_name,omitempty"`
	Error    string `json:"error,omitempty"` // expired | exhausted | not_found
}
