package model

import "time"

// Credential 识别凭证表 — 对应 credentials
// 每个成员同一时刻至多一张启用中的扫码凭证；重新生成时软停用旧凭证，保留历史
type Credential struct {
	QRID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"qr_id"`
	UserID      string    `gorm:"type:uuid;not null"                             json:"user_id"`
	ClubID      string    `gorm:"type:uuid;not null"                             json:"club_id"`
	OpaqueData  string    `gorm:"type:varchar(128);not null;uniqueIndex"         json:"opaque_data"`
	IsActive    bool      `gorm:"not null;default:true"                          json:"is_active"`
	GeneratedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"generated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Credential) TableName() string { return "credentials" }
