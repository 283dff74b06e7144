package repository

import (
	"context"

	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/store"

	"gorm.io/gorm"
)

// TransferRepository 调拨台账数据访问接口
// 台账只追加，不提供更新与删除
type TransferRepository interface {
	Create(ctx context.Context, transfer *models.SurplusTransfer) error
	ListByHospital(ctx context.Context, hospitalID uint, filter TransferListFilter) ([]models.SurplusTransfer, int64, error)
}

// GormTransferRepository GORM 实现
type GormTransferRepository struct {
	guard *store.Guard
}

// NewTransferRepository 创建调拨台账仓库
func NewTransferRepository(guard *store.Guard) *GormTransferRepository {
	return &GormTransferRepository{guard: guard}
}

// Create 追加一条调拨记录
func (r *GormTransferRepository) Create(ctx context.Context, transfer *models.SurplusTransfer) error {
	return r.guard.Execute(ctx, "transfer_create", func(tx *gorm.DB) error {
		return tx.Create(transfer).Error
	})
}

// ListByHospital 查询与某医院相关的调拨记录（调出或调入均命中）
func (r *GormTransferRepository) ListByHospital(ctx context.Context, hospitalID uint, filter TransferListFilter) ([]models.SurplusTransfer, int64, error) {
	transfers := make([]models.SurplusTransfer, 0)
	var total int64
	err := r.guard.Execute(ctx, "transfer_list_by_hospital", func(tx *gorm.DB) error {
		query := tx.Model(&models.SurplusTransfer{}).
			Where("from_hospital_id = ? OR to_hospital_id = ?", hospitalID, hospitalID)
		if filter.Kind != "" {
			query = query.Where("component_kind = ?", filter.Kind)
		}
		if err := query.Count(&total).Error; err != nil {
			return err
		}
		return paginate(query, filter.Page, filter.PageSize).
			Order("created_at DESC, id DESC").
			Find(&transfers).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}
