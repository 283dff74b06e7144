package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bloodlink-next/internal/constants"
	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/store"

	"gorm.io/gorm"
)

// InventoryRepository 库存数据访问接口
// 三类成分各自一张表，接口层以统一视图 InventoryUnit 交互
type InventoryRepository interface {
	GetByBagID(ctx context.Context, kind, bagID string) (*models.InventoryUnit, error)
	Create(ctx context.Context, unit *models.InventoryUnit) error
	UpdateFields(ctx context.Context, kind, bagID string, fields map[string]interface{}) error
	SetActive(ctx context.Context, kind, bagID string, active bool) error
	List(ctx context.Context, filter InventoryListFilter, now time.Time) ([]models.InventoryUnit, int64, error)
	AggregateActive(ctx context.Context, kind string, hospitalID uint) ([]StockAggregate, error)
	Summary(ctx context.Context, kind string, hospitalID uint, now, soon time.Time) (*KindSummary, error)
}

// GormInventoryRepository GORM 实现
type GormInventoryRepository struct {
	guard *store.Guard
}

// NewInventoryRepository 创建库存仓库
func NewInventoryRepository(guard *store.Guard) *GormInventoryRepository {
	return &GormInventoryRepository{guard: guard}
}

// GetByBagID 根据袋号获取单位（跨院，调用方自行做归属校验）
func (r *GormInventoryRepository) GetByBagID(ctx context.Context, kind, bagID string) (*models.InventoryUnit, error) {
	var unit *models.InventoryUnit
	err := r.guard.Execute(ctx, "inventory_get_by_bag_id", func(tx *gorm.DB) error {
		switch kind {
		case constants.ComponentRedCell:
			var row models.RedCellUnit
			if err := tx.Where("bag_id = ?", bagID).First(&row).Error; err != nil {
				return err
			}
			converted := row.ToUnit()
			unit = &converted
		case constants.ComponentPlasma:
			var row models.PlasmaUnit
			if err := tx.Where("bag_id = ?", bagID).First(&row).Error; err != nil {
				return err
			}
			converted := row.ToUnit()
			unit = &converted
		case constants.ComponentPlatelet:
			var row models.PlateletUnit
			if err := tx.Where("bag_id = ?", bagID).First(&row).Error; err != nil {
				return err
			}
			converted := row.ToUnit()
			unit = &converted
		default:
			return fmt.Errorf("unknown component kind: %s", kind)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return unit, nil
}

// Create 写入新库存单位；袋号唯一键冲突原样返回 gorm.ErrDuplicatedKey
func (r *GormInventoryRepository) Create(ctx context.Context, unit *models.InventoryUnit) error {
	if unit == nil {
		return fmt.Errorf("inventory unit is nil")
	}
	return r.guard.Execute(ctx, "inventory_create", func(tx *gorm.DB) error {
		switch unit.Kind {
		case constants.ComponentRedCell:
			row := models.RedCellUnit{
				BagID:      unit.BagID,
				HospitalID: unit.HospitalID,
				DonorName:  unit.DonorName,
				BloodType:  unit.BloodType,
				Rh:         unit.Rh,
				AmountML:   unit.AmountML,
				ExpiresOn:  unit.ExpiresOn,
				IsActive:   true,
			}
			return tx.Create(&row).Error
		case constants.ComponentPlasma:
			row := models.PlasmaUnit{
				BagID:      unit.BagID,
				HospitalID: unit.HospitalID,
				DonorName:  unit.DonorName,
				BloodType:  unit.BloodType,
				AmountML:   unit.AmountML,
				ExpiresOn:  unit.ExpiresOn,
				IsActive:   true,
			}
			return tx.Create(&row).Error
		case constants.ComponentPlatelet:
			row := models.PlateletUnit{
				BagID:      unit.BagID,
				HospitalID: unit.HospitalID,
				DonorName:  unit.DonorName,
				BloodType:  unit.BloodType,
				Rh:         unit.Rh,
				AmountML:   unit.AmountML,
				ExpiresOn:  unit.ExpiresOn,
				IsActive:   true,
			}
			return tx.Create(&row).Error
		default:
			return fmt.Errorf("unknown component kind: %s", unit.Kind)
		}
	})
}

// UpdateFields 覆盖可变字段（调用方已完成归属与形状校验）
func (r *GormInventoryRepository) UpdateFields(ctx context.Context, kind, bagID string, fields map[string]interface{}) error {
	return r.guard.Execute(ctx, "inventory_update_fields", func(tx *gorm.DB) error {
		query, err := modelQuery(tx, kind)
		if err != nil {
			return err
		}
		return query.Where("bag_id = ?", bagID).Updates(fields).Error
	})
}

// SetActive 设置在库标记（软删除 / 恢复）
func (r *GormInventoryRepository) SetActive(ctx context.Context, kind, bagID string, active bool) error {
	return r.guard.Execute(ctx, "inventory_set_active", func(tx *gorm.DB) error {
		query, err := modelQuery(tx, kind)
		if err != nil {
			return err
		}
		return query.Where("bag_id = ?", bagID).Update("is_active", active).Error
	})
}

// List 查询库存列表
func (r *GormInventoryRepository) List(ctx context.Context, filter InventoryListFilter, now time.Time) ([]models.InventoryUnit, int64, error) {
	units := make([]models.InventoryUnit, 0)
	var total int64
	err := r.guard.Execute(ctx, "inventory_list", func(tx *gorm.DB) error {
		switch filter.Kind {
		case constants.ComponentRedCell:
			var rows []models.RedCellUnit
			query := applyInventoryFilter(tx.Model(&models.RedCellUnit{}), filter, now, true)
			if err := query.Count(&total).Error; err != nil {
				return err
			}
			if err := paginate(query, filter.Page, filter.PageSize).Order("expires_on ASC, bag_id ASC").Find(&rows).Error; err != nil {
				return err
			}
			for i := range rows {
				units = append(units, rows[i].ToUnit())
			}
		case constants.ComponentPlasma:
			var rows []models.PlasmaUnit
			query := applyInventoryFilter(tx.Model(&models.PlasmaUnit{}), filter, now, false)
			if err := query.Count(&total).Error; err != nil {
				return err
			}
			if err := paginate(query, filter.Page, filter.PageSize).Order("expires_on ASC, bag_id ASC").Find(&rows).Error; err != nil {
				return err
			}
			for i := range rows {
				units = append(units, rows[i].ToUnit())
			}
		case constants.ComponentPlatelet:
			var rows []models.PlateletUnit
			query := applyInventoryFilter(tx.Model(&models.PlateletUnit{}), filter, now, true)
			if err := query.Count(&total).Error; err != nil {
				return err
			}
			if err := paginate(query, filter.Page, filter.PageSize).Order("expires_on ASC, bag_id ASC").Find(&rows).Error; err != nil {
				return err
			}
			for i := range rows {
				units = append(units, rows[i].ToUnit())
			}
		default:
			return fmt.Errorf("unknown component kind: %s", filter.Kind)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return units, total, nil
}

// AggregateActive 按（医院, 血型, Rh）聚合在库有效库存；hospitalID 为 0 时聚合全部医院
func (r *GormInventoryRepository) AggregateActive(ctx context.Context, kind string, hospitalID uint) ([]StockAggregate, error) {
	rows := make([]StockAggregate, 0)
	err := r.guard.Execute(ctx, "inventory_aggregate_active", func(tx *gorm.DB) error {
		query, err := modelQuery(tx, kind)
		if err != nil {
			return err
		}
		if constants.KindHasRh(kind) {
			query = query.Select("hospital_id, blood_type, rh, COUNT(*) AS units, COALESCE(SUM(amount_ml), 0) AS amount_ml").
				Group("hospital_id, blood_type, rh")
		} else {
			query = query.Select("hospital_id, blood_type, '' AS rh, COUNT(*) AS units, COALESCE(SUM(amount_ml), 0) AS amount_ml").
				Group("hospital_id, blood_type")
		}
		query = query.Where("is_active = ?", true)
		if hospitalID > 0 {
			query = query.Where("hospital_id = ?", hospitalID)
		}
		return query.Order("hospital_id ASC, blood_type ASC").Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Summary 单一成分类型的库存汇总
func (r *GormInventoryRepository) Summary(ctx context.Context, kind string, hospitalID uint, now, soon time.Time) (*KindSummary, error) {
	var summary KindSummary
	err := r.guard.Execute(ctx, "inventory_summary", func(tx *gorm.DB) error {
		query, err := modelQuery(tx, kind)
		if err != nil {
			return err
		}
		return query.
			Select(
				"COUNT(*) AS active_units, "+
					"COALESCE(SUM(amount_ml), 0) AS amount_ml, "+
					"COALESCE(SUM(CASE WHEN expires_on < ? THEN 1 ELSE 0 END), 0) AS expired, "+
					"COALESCE(SUM(CASE WHEN expires_on >= ? AND expires_on < ? THEN 1 ELSE 0 END), 0) AS expiring_soon",
				now, now, soon,
			).
			Where("is_active = ? AND hospital_id = ?", true, hospitalID).
			Scan(&summary).Error
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func modelQuery(tx *gorm.DB, kind string) (*gorm.DB, error) {
	switch kind {
	case constants.ComponentRedCell:
		return tx.Model(&models.RedCellUnit{}), nil
	case constants.ComponentPlasma:
		return tx.Model(&models.PlasmaUnit{}), nil
	case constants.ComponentPlatelet:
		return tx.Model(&models.PlateletUnit{}), nil
	default:
		return nil, fmt.Errorf("unknown component kind: %s", kind)
	}
}

func applyInventoryFilter(query *gorm.DB, filter InventoryListFilter, now time.Time, hasRh bool) *gorm.DB {
	if !filter.AllHospitals {
		query = query.Where("hospital_id = ?", filter.HospitalID)
	}
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.BloodType != "" {
		query = query.Where("blood_type = ?", filter.BloodType)
	}
	if hasRh && filter.Rh != "" {
		query = query.Where("rh = ?", filter.Rh)
	}
	switch filter.ExpiryStatus {
	case constants.ExpiryFilterValid:
		query = query.Where("expires_on >= ?", now)
	case constants.ExpiryFilterExpired:
		query = query.Where("expires_on < ?", now)
	}
	return query
}

func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
