package models

import "time"

// Hospital 医院（租户）表
// 所有库存与管理员都归属于唯一一家医院
type Hospital struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Location  string    `gorm:"size:255" json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (Hospital) TableName() string {
	return "hospitals"
}
