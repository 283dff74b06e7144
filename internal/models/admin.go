package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin 管理员表
// Credential 兼容两种形态：历史遗留的明文口令与 bcrypt 哈希，
// 登录成功后明文会被原地升级为哈希（见 service.AuthService）
type Admin struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Username    string         `gorm:"uniqueIndex;not null;size:64" json:"username"`
	Credential  string         `gorm:"not null" json:"-"` // 明文旧值或 bcrypt 哈希（不返回给前端）
	HospitalID  uint           `gorm:"not null;index" json:"hospital_id"`
	IsSuper     bool           `gorm:"not null;default:false;index" json:"is_super"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}
