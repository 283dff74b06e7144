package models

import (
	"time"

	"github.com/bloodlink-next/internal/constants"
)

// RedCellUnit 红细胞库存表
// IsActive 是区分在库与软删除的唯一标记，常规操作不做物理删除
type RedCellUnit struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	BagID      string    `gorm:"uniqueIndex;not null;size:64" json:"bag_id"`
	HospitalID uint      `gorm:"not null;index" json:"hospital_id"`
	DonorName  string    `gorm:"size:255;not null" json:"donor_name"`
	BloodType  string    `gorm:"size:4;not null;index" json:"blood_type"`
	Rh         string    `gorm:"size:1;not null" json:"rh"`
	AmountML   int       `gorm:"not null" json:"amount_ml"`
	ExpiresOn  time.Time `gorm:"not null;index" json:"expires_on"`
	IsActive   bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定表名
func (RedCellUnit) TableName() string {
	return "red_cell_units"
}

// PlasmaUnit 血浆库存表（血浆不携带 Rh 属性）
type PlasmaUnit struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	BagID      string    `gorm:"uniqueIndex;not null;size:64" json:"bag_id"`
	HospitalID uint      `gorm:"not null;index" json:"hospital_id"`
	DonorName  string    `gorm:"size:255;not null" json:"donor_name"`
	BloodType  string    `gorm:"size:4;not null;index" json:"blood_type"`
	AmountML   int       `gorm:"not null" json:"amount_ml"`
	ExpiresOn  time.Time `gorm:"not null;index" json:"expires_on"`
	IsActive   bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定表名
func (PlasmaUnit) TableName() string {
	return "plasma_units"
}

// PlateletUnit 血小板库存表
type PlateletUnit struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	BagID      string    `gorm:"uniqueIndex;not null;size:64" json:"bag_id"`
	HospitalID uint      `gorm:"not null;index" json:"hospital_id"`
	DonorName  string    `gorm:"size:255;not null" json:"donor_name"`
	BloodType  string    `gorm:"size:4;not null;index" json:"blood_type"`
	Rh         string    `gorm:"size:1;not null" json:"rh"`
	AmountML   int       `gorm:"not null" json:"amount_ml"`
	ExpiresOn  time.Time `gorm:"not null;index" json:"expires_on"`
	IsActive   bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定表名
func (PlateletUnit) TableName() string {
	return "platelet_units"
}

// InventoryUnit 三类库存的统一视图，服务层与接口层按此结构传递
type InventoryUnit struct {
	Kind       string    `json:"kind"`
	BagID      string    `json:"bag_id"`
	HospitalID uint      `json:"hospital_id"`
	DonorName  string    `json:"donor_name"`
	BloodType  string    `json:"blood_type"`
	Rh         string    `json:"rh,omitempty"`
	AmountML   int       `json:"amount_ml"`
	ExpiresOn  time.Time `json:"expires_on"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToUnit 转换为统一视图
func (u *RedCellUnit) ToUnit() InventoryUnit {
	return InventoryUnit{
		Kind:       constants.ComponentRedCell,
		BagID:      u.BagID,
		HospitalID: u.HospitalID,
		DonorName:  u.DonorName,
		BloodType:  u.BloodType,
		Rh:         u.Rh,
		AmountML:   u.AmountML,
		ExpiresOn:  u.ExpiresOn,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// ToUnit 转换为统一视图
func (u *PlasmaUnit) ToUnit() InventoryUnit {
	return InventoryUnit{
		Kind:       constants.ComponentPlasma,
		BagID:      u.BagID,
		HospitalID: u.HospitalID,
		DonorName:  u.DonorName,
		BloodType:  u.BloodType,
		Rh:         constants.RhNone,
		AmountML:   u.AmountML,
		ExpiresOn:  u.ExpiresOn,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// ToUnit 转换为统一视图
func (u *PlateletUnit) ToUnit() InventoryUnit {
	return InventoryUnit{
		Kind:       constants.ComponentPlatelet,
		BagID:      u.BagID,
		HospitalID: u.HospitalID,
		DonorName:  u.DonorName,
		BloodType:  u.BloodType,
		Rh:         u.Rh,
		AmountML:   u.AmountML,
		ExpiresOn:  u.ExpiresOn,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Expired 判断单位是否已过期
func (u InventoryUnit) Expired(now time.Time) bool {
	return u.ExpiresOn.Before(now)
}
