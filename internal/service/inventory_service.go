package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bloodlink-next/internal/config"
	"github.com/bloodlink-next/internal/constants"
	"github.com/bloodlink-next/internal/fallback"
	"github.com/bloodlink-next/internal/logger"
	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/repository"
	"github.com/bloodlink-next/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryService 库存服务
// 单位的生命周期只有在库与软删除两种状态，修改与删除都要求归属校验
type InventoryService struct {
	cfg           *config.Config
	guard         *store.Guard
	inventoryRepo repository.InventoryRepository
}

// NewInventoryService 创建库存服务
func NewInventoryService(cfg *config.Config, guard *store.Guard, inventoryRepo repository.InventoryRepository) *InventoryService {
	return &InventoryService{
		cfg:           cfg,
		guard:         guard,
		inventoryRepo: inventoryRepo,
	}
}

// CreateInput 入库请求
type CreateInput struct {
	Kind      string    `json:"kind"`
	BagID     string    `json:"bag_id"`
	DonorName string    `json:"donor_name"`
	BloodType string    `json:"blood_type"`
	Rh        string    `json:"rh"`
	AmountML  int       `json:"amount_ml"`
	ExpiresOn time.Time `json:"expires_on"`
}

// UpdateInput 修改请求；袋号与归属医院不可变
type UpdateInput struct {
	DonorName string    `json:"donor_name"`
	BloodType string    `json:"blood_type"`
	Rh        string    `json:"rh"`
	AmountML  int       `json:"amount_ml"`
	ExpiresOn time.Time `json:"expires_on"`
}

// ListInput 列表查询请求
type ListInput struct {
	Kind            string
	Page            int
	PageSize        int
	BloodType       string
	Rh              string
	ExpiryStatus    string
	IncludeInactive bool
	HospitalID      uint // 仅超级管理员可指定其他医院
}

func validateUnitShape(kind, bloodType, rh string, amountML int, expiresOn time.Time) error {
	if !constants.IsComponentKind(kind) {
		return NewValidationError("unknown component kind")
	}
	if !constants.IsBloodType(bloodType) {
		return NewValidationError("invalid blood type")
	}
	if constants.KindHasRh(kind) {
		if !constants.IsRh(rh, false) {
			return NewValidationError("rh factor must be + or -")
		}
	} else if rh != "" {
		return NewValidationError("plasma units do not carry an rh factor")
	}
	if amountML <= 0 {
		return NewValidationError("amount_ml must be positive")
	}
	if expiresOn.IsZero() {
		return NewValidationError("expires_on is required")
	}
	return nil
}

// Create 入库一袋新单位，归属于操作者所在医院（超级管理员可代任意医院入库）
func (s *InventoryService) Create(ctx context.Context, identity *Identity, hospitalID uint, input CreateInput) (*models.InventoryUnit, error) {
	target, err := ScopeHospital(identity, hospitalID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeHospital(identity, target); err != nil {
		return nil, err
	}
	input.BagID = strings.TrimSpace(input.BagID)
	input.DonorName = strings.TrimSpace(input.DonorName)
	if input.BagID == "" {
		// 未提供袋号时由服务端生成，保证全局唯一
		input.BagID = "BAG-" + uuid.NewString()
	}
	if input.DonorName == "" {
		return nil, NewValidationError("donor_name is required")
	}
	if err := validateUnitShape(input.Kind, input.BloodType, input.Rh, input.AmountML, input.ExpiresOn); err != nil {
		return nil, err
	}

	unit := &models.InventoryUnit{
		Kind:       input.Kind,
		BagID:      input.BagID,
		HospitalID: target,
		DonorName:  input.DonorName,
		BloodType:  input.BloodType,
		Rh:         input.Rh,
		AmountML:   input.AmountML,
		ExpiresOn:  input.ExpiresOn,
		IsActive:   true,
	}

	if s.guard.FallbackMode() {
		// 演示模式：写入只模拟成功，不落任何数据
		now := time.Now()
		unit.CreatedAt = now
		unit.UpdatedAt = now
		logger.Infow("inventory_create_simulated", "kind", unit.Kind, "bag_id", unit.BagID, "mode", fallback.Label)
		return unit, nil
	}

	if err := s.inventoryRepo.Create(ctx, unit); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	logger.Infow("inventory_created",
		"kind", unit.Kind,
		"bag_id", unit.BagID,
		"hospital_id", unit.HospitalID,
		"admin_id", identity.AdminID,
	)
	return unit, nil
}

// Get 获取单个单位，附带归属校验
func (s *InventoryService) Get(ctx context.Context, identity *Identity, kind, bagID string) (*models.InventoryUnit, error) {
	if !constants.IsComponentKind(kind) {
		return nil, NewValidationError("unknown component kind")
	}
	unit, err := s.fetch(ctx, kind, bagID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeHospital(identity, unit.HospitalID); err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *InventoryService) fetch(ctx context.Context, kind, bagID string) (*models.InventoryUnit, error) {
	if s.guard.FallbackMode() {
		unit := fallback.FindUnit(kind, bagID)
		if unit == nil {
			return nil, ErrNotFound
		}
		return unit, nil
	}
	unit, err := s.inventoryRepo.GetByBagID(ctx, kind, bagID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, ErrNotFound
	}
	return unit, nil
}

// Update 修改在库单位的可变字段；软删除状态下不可修改，需先恢复
func (s *InventoryService) Update(ctx context.Context, identity *Identity, kind, bagID string, input UpdateInput) (*models.InventoryUnit, error) {
	unit, err := s.Get(ctx, identity, kind, bagID)
	if err != nil {
		return nil, err
	}
	if !unit.IsActive {
		return nil, ErrConflict
	}
	input.DonorName = strings.TrimSpace(input.DonorName)
	if input.DonorName == "" {
		return nil, NewValidationError("donor_name is required")
	}
	if err := validateUnitShape(kind, input.BloodType, input.Rh, input.AmountML, input.ExpiresOn); err != nil {
		return nil, err
	}

	unit.DonorName = input.DonorName
	unit.BloodType = input.BloodType
	unit.Rh = input.Rh
	unit.AmountML = input.AmountML
	unit.ExpiresOn = input.ExpiresOn

	if s.guard.FallbackMode() {
		unit.UpdatedAt = time.Now()
		logger.Infow("inventory_update_simulated", "kind", kind, "bag_id", bagID, "mode", fallback.Label)
		return unit, nil
	}

	fields := map[string]interface{}{
		"donor_name": unit.DonorName,
		"blood_type": unit.BloodType,
		"amount_ml":  unit.AmountML,
		"expires_on": unit.ExpiresOn,
	}
	if constants.KindHasRh(kind) {
		fields["rh"] = unit.Rh
	}
	if err := s.inventoryRepo.UpdateFields(ctx, kind, bagID, fields); err != nil {
		return nil, err
	}
	logger.Infow("inventory_updated", "kind", kind, "bag_id", bagID, "admin_id", identity.AdminID)
	return unit, nil
}

// SoftDelete 将在库单位标记为软删除；重复删除是幂等的空操作
func (s *InventoryService) SoftDelete(ctx context.Context, identity *Identity, kind, bagID string) error {
	return s.transition(ctx, identity, kind, bagID, false)
}

// Restore 恢复软删除单位到在库状态；对在库单位恢复是幂等的空操作
func (s *InventoryService) Restore(ctx context.Context, identity *Identity, kind, bagID string) error {
	return s.transition(ctx, identity, kind, bagID, true)
}

func (s *InventoryService) transition(ctx context.Context, identity *Identity, kind, bagID string, toActive bool) error {
	unit, err := s.Get(ctx, identity, kind, bagID)
	if err != nil {
		return err
	}
	// 已处于目标状态时直接确认成功，不再写库
	if unit.IsActive == toActive {
		return nil
	}

	if s.guard.FallbackMode() {
		logger.Infow("inventory_transition_simulated",
			"kind", kind,
			"bag_id", bagID,
			"is_active", toActive,
			"mode", fallback.Label,
		)
		return nil
	}

	if err := s.inventoryRepo.SetActive(ctx, kind, bagID, toActive); err != nil {
		return err
	}
	action := "inventory_soft_deleted"
	if toActive {
		action = "inventory_restored"
	}
	logger.Infow(action, "kind", kind, "bag_id", bagID, "admin_id", identity.AdminID)
	return nil
}

// List 查询库存列表，范围收敛到操作者可见的医院
func (s *InventoryService) List(ctx context.Context, identity *Identity, input ListInput) ([]models.InventoryUnit, int64, error) {
	if !constants.IsComponentKind(input.Kind) {
		return nil, 0, NewValidationError("unknown component kind")
	}
	if input.BloodType != "" && !constants.IsBloodType(input.BloodType) {
		return nil, 0, NewValidationError("invalid blood type")
	}
	if input.Rh != "" && !constants.IsRh(input.Rh, false) {
		return nil, 0, NewValidationError("rh factor must be + or -")
	}
	if !constants.IsExpiryFilter(input.ExpiryStatus) {
		return nil, 0, NewValidationError("invalid expiry filter")
	}
	target, err := ScopeHospital(identity, input.HospitalID)
	if err != nil {
		return nil, 0, err
	}
	if err := AuthorizeHospital(identity, target); err != nil {
		return nil, 0, err
	}

	filter := repository.InventoryListFilter{
		Page:            input.Page,
		PageSize:        input.PageSize,
		Kind:            input.Kind,
		HospitalID:      target,
		BloodType:       input.BloodType,
		Rh:              input.Rh,
		ExpiryStatus:    input.ExpiryStatus,
		IncludeInactive: input.IncludeInactive,
	}
	now := time.Now()
	if s.guard.FallbackMode() {
		units, total := fallback.ListUnits(filter, now)
		return units, total, nil
	}
	return s.inventoryRepo.List(ctx, filter, now)
}

// ListAllHospitals 跨院全量列表，仅供超级管理员的系统诊断入口使用
func (s *InventoryService) ListAllHospitals(ctx context.Context, identity *Identity, kind string, page, pageSize int) ([]models.InventoryUnit, int64, error) {
	if identity == nil || identity.AdminID == 0 {
		return nil, 0, ErrUnauthorized
	}
	if !identity.IsSuper {
		return nil, 0, ErrForbidden
	}
	if !constants.IsComponentKind(kind) {
		return nil, 0, NewValidationError("unknown component kind")
	}
	filter := repository.InventoryListFilter{
		Page:            page,
		PageSize:        pageSize,
		Kind:            kind,
		IncludeInactive: true,
		AllHospitals:    true,
	}
	now := time.Now()
	if s.guard.FallbackMode() {
		units, total := fallback.ListUnits(filter, now)
		return units, total, nil
	}
	return s.inventoryRepo.List(ctx, filter, now)
}

// Summary 仪表盘用的分成分库存汇总
func (s *InventoryService) Summary(ctx context.Context, identity *Identity, hospitalID uint) (map[string]*repository.KindSummary, error) {
	target, err := ScopeHospital(identity, hospitalID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeHospital(identity, target); err != nil {
		return nil, err
	}

	now := time.Now()
	soonDays := 7
	if s.cfg != nil && s.cfg.Stock.ExpiringSoonDays > 0 {
		soonDays = s.cfg.Stock.ExpiringSoonDays
	}
	soon := now.AddDate(0, 0, soonDays)

	out := make(map[string]*repository.KindSummary, len(constants.ComponentKinds))
	for _, kind := range constants.ComponentKinds {
		if s.guard.FallbackMode() {
			out[kind] = fallback.Summary(kind, target, now, soon)
			continue
		}
		summary, err := s.inventoryRepo.Summary(ctx, kind, target, now, soon)
		if err != nil {
			return nil, err
		}
		out[kind] = summary
	}
	return out, nil
}
