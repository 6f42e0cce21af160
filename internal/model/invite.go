package model

import "time"

// Invite 邀请码表 — 对应 invites
// 注册名额有限、有有效期的准入令牌；只增不删，作为审计记录保留
// 不变式: used_count ≤ allowed_signups；仅当 now < expires_at 且 used_count < allowed_signups 时可兑换
type Invite struct {
	InviteID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invite_id"`
	ClubID         string    `gorm:"type:uuid;not null"                             json:"club_id"`
	Token          string    `gorm:"type:varchar(64);not null;uniqueIndex"          json:"token"`
	Role           string    `gorm:"type:varchar(20);not null"                      json:"role"`
	AllowedSignups int       `gorm:"not null;default:1"                             json:"allowed_signups"`
	UsedCount      int       `gorm:"not null;default:0"                             json:"used_count"`
	ExpiresAt      time.Time `gorm:"not null"                                       json:"expires_at"`
	BaseModel

	// 关联
	Club *Club `gorm:"foreignKey:ClubID;references:ClubID" json:"club,omitempty"`
}

// TableName 指定表名
func (Invite) TableName() string { return "invites" }

// Expired 判断邀请码在 now 时刻是否已过期
func (i *Invite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Exhausted 判断注册名额是否已用尽
func (i *Invite) Exhausted() bool {
	return i.UsedCount >= i.AllowedSignups
}
