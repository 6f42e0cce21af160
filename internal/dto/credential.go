package dto

// ── 识别凭证模块 DTO ──

// CredentialResponse 识别凭证响应
type CredentialResponse struct {
	QRID        string `json:"qr_id"`
	UserID      string `json:"user_id"`
	OpaqueData  string `json:"opaque_data"`
	IsActive    bool   `json:"is_active"`
	GeneratedAt string `json:"generated_at"`
}
