package model

// User 成员表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	ClubID       string `gorm:"type:uuid;not null"                             json:"club_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'member'"     json:"role"`
	BaseModel

	// 关联
	Club *Club `gorm:"foreignKey:ClubID;references:ClubID" json:"club,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
