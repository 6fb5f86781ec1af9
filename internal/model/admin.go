package model

import "time"

// Admin 管理员账号
type Admin struct {
	BaseModel

	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Role     string `gorm:"size:32;default:admin" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	LastLoginAt *time.Time `json:"last_login_at"`
}

func (Admin) TableName() string {
	return "admins"
}
