package models

import "time"

// Session 会话表
// Token 为服务端签发的不透明随机令牌，客户端不可解读其内容；
// HospitalID 在会话创建时落库，会话存续期内不可变
type Session struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Token      string    `gorm:"uniqueIndex;not null;size:64" json:"-"`
	AdminID    uint      `gorm:"not null;index" json:"admin_id"`
	HospitalID uint      `gorm:"not null;index" json:"hospital_id"`
	ExpiresAt  time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 指定表名
func (Session) TableName() string {
	return "sessions"
}

// Expired 判断会话是否已过期
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !s.ExpiresAt.After(now)
}
