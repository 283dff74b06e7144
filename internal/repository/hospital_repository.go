package repository

import (
	"context"
	"errors"

	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/store"

	"gorm.io/gorm"
)

// HospitalRepository 医院数据访问接口
type HospitalRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Hospital, error)
	List(ctx context.Context) ([]models.Hospital, error)
	Create(ctx context.Context, hospital *models.Hospital) error
}

// GormHospitalRepository GORM 实现
type GormHospitalRepository struct {
	guard *store.Guard
}

// NewHospitalRepository 创建医院仓库
func NewHospitalRepository(guard *store.Guard) *GormHospitalRepository {
	return &GormHospitalRepository{guard: guard}
}

// GetByID 根据 ID 获取医院
func (r *GormHospitalRepository) GetByID(ctx context.Context, id uint) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.guard.Execute(ctx, "hospital_get_by_id", func(tx *gorm.DB) error {
		return tx.First(&hospital, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hospital, nil
}

// List 获取全部医院
func (r *GormHospitalRepository) List(ctx context.Context) ([]models.Hospital, error) {
	hospitals := make([]models.Hospital, 0)
	err := r.guard.Execute(ctx, "hospital_list", func(tx *gorm.DB) error {
		return tx.Order("id ASC").Find(&hospitals).Error
	})
	if err != nil {
		return nil, err
	}
	return hospitals, nil
}

// Create 创建医院
func (r *GormHospitalRepository) Create(ctx context.Context, hospital *models.Hospital) error {
	return r.guard.Execute(ctx, "hospital_create", func(tx *gorm.DB) error {
		return tx.Create(hospital).Error
	})
}
