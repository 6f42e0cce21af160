package model

// Club 社团表 — 对应 clubs
// 租户边界：所有实体与权限校验均限定在单个社团内
type Club struct {
	ClubID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"club_id"`
	Name     string `gorm:"type:varchar(100);not null"                     json:"name"`
	IsActive bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Club) TableName() string { return "clubs" }
