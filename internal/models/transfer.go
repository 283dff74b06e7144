package models

import "time"

// SurplusTransfer 富余调拨台账表
// 只追加：记录一次调拨事实后不再修改或删除；
// 调拨本身不改动任何库存行，库存侧调整由调用方另行发起
type SurplusTransfer struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	FromHospitalID uint      `gorm:"not null;index" json:"from_hospital_id"`
	ToHospitalID   uint      `gorm:"not null;index" json:"to_hospital_id"`
	ComponentKind  string    `gorm:"size:16;not null;index" json:"component_kind"`
	BloodType      string    `gorm:"size:4;not null" json:"blood_type"`
	Rh             string    `gorm:"size:1;not null" json:"rh"`
	AmountML       int       `gorm:"not null" json:"amount_ml"`
	Units          int       `gorm:"not null" json:"units"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (SurplusTransfer) TableName() string {
	return "surplus_transfers"
}
