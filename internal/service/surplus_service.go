package service

import (
	"context"
	"time"

	"github.com/bloodlink-next/internal/config"
	"github.com/bloodlink-next/internal/constants"
	"github.com/bloodlink-next/internal/fallback"
	"github.com/bloodlink-next/internal/logger"
	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/repository"
	"github.com/bloodlink-next/internal/store"
)

// SurplusService 富余检测与调拨台账服务
// 台账与库存解耦：记录一笔调拨不会移动任何库存单位，实物交接
// 由各院线下完成后自行增删库存
type SurplusService struct {
	cfg           *config.Config
	guard         *store.Guard
	inventoryRepo repository.InventoryRepository
	hospitalRepo  repository.HospitalRepository
	transferRepo  repository.TransferRepository
}

// NewSurplusService 创建富余服务
func NewSurplusService(cfg *config.Config, guard *store.Guard, inventoryRepo repository.InventoryRepository, hospitalRepo repository.HospitalRepository, transferRepo repository.TransferRepository) *SurplusService {
	return &SurplusService{
		cfg:           cfg,
		guard:         guard,
		inventoryRepo: inventoryRepo,
		hospitalRepo:  hospitalRepo,
		transferRepo:  transferRepo,
	}
}

// SurplusLine 单个（成分, 血型, Rh）组合的富余情况
type SurplusLine struct {
	Kind        string `json:"kind"`
	BloodType   string `json:"blood_type"`
	Rh          string `json:"rh,omitempty"`
	Units       int64  `json:"units"`
	AmountML    int64  `json:"amount_ml"`
	ExtraUnits  int64  `json:"extra_units"`
	Threshold   int    `json:"threshold"`
}

// NeedLine 某医院某组合的短缺情况，零库存组合同样计入
type NeedLine struct {
	HospitalID   uint   `json:"hospital_id"`
	HospitalName string `json:"hospital_name"`
	Kind         string `json:"kind"`
	BloodType    string `json:"blood_type"`
	Rh           string `json:"rh,omitempty"`
	Units        int64  `json:"units"`
	Deficit      int64  `json:"deficit"`
	Threshold    int    `json:"threshold"`
}

// TransferInput 登记调拨的请求
type TransferInput struct {
	ToHospitalID uint   `json:"to_hospital_id"`
	Kind         string `json:"kind"`
	BloodType    string `json:"blood_type"`
	Rh           string `json:"rh"`
	Units        int    `json:"units"`
	AmountML     int    `json:"amount_ml"`
}

func (s *SurplusService) surplusThreshold() int {
	if s.cfg != nil && s.cfg.Stock.SurplusUnits > 0 {
		return s.cfg.Stock.SurplusUnits
	}
	return 6
}

func (s *SurplusService) lowStockThreshold() int {
	if s.cfg != nil && s.cfg.Stock.LowStockUnits > 0 {
		return s.cfg.Stock.LowStockUnits
	}
	return 2
}

func (s *SurplusService) aggregate(ctx context.Context, kind string, hospitalID uint) ([]repository.StockAggregate, error) {
	if s.guard.FallbackMode() {
		return fallback.Aggregate(kind, hospitalID), nil
	}
	return s.inventoryRepo.AggregateActive(ctx, kind, hospitalID)
}

// SurplusFor 检测某医院所有成分的富余组合
func (s *SurplusService) SurplusFor(ctx context.Context, identity *Identity, hospitalID uint) ([]SurplusLine, error) {
	target, err := ScopeHospital(identity, hospitalID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeHospital(identity, target); err != nil {
		return nil, err
	}

	threshold := s.surplusThreshold()
	lines := make([]SurplusLine, 0)
	for _, kind := range constants.ComponentKinds {
		aggregates, err := s.aggregate(ctx, kind, target)
		if err != nil {
			return nil, err
		}
		for _, agg := range aggregates {
			if agg.Units <= int64(threshold) {
				continue
			}
			lines = append(lines, SurplusLine{
				Kind:       kind,
				BloodType:  agg.BloodType,
				Rh:         agg.Rh,
				Units:      agg.Units,
				AmountML:   agg.AmountML,
				ExtraUnits: agg.Units - int64(threshold),
				Threshold:  threshold,
			})
		}
	}
	return lines, nil
}

// rhVariants 某成分类型参与组合枚举的 Rh 取值
func rhVariants(kind string) []string {
	if constants.KindHasRh(kind) {
		return []string{constants.RhPositive, constants.RhNegative}
	}
	return []string{constants.RhNone}
}

// HospitalsNeeding 枚举其他医院的短缺组合，调用方所在医院不计入结果
// 组合空间完整枚举，没有任何库存记录的组合按零库存计入短缺
func (s *SurplusService) HospitalsNeeding(ctx context.Context, identity *Identity, kind string) ([]NeedLine, error) {
	if identity == nil || identity.AdminID == 0 {
		return nil, ErrUnauthorized
	}
	kinds := constants.ComponentKinds
	if kind != "" {
		if !constants.IsComponentKind(kind) {
			return nil, NewValidationError("unknown component kind")
		}
		kinds = []string{kind}
	}
	return s.scanNeeds(ctx, kinds, identity.HospitalID)
}

// ScanNeeds 短缺扫描的内部入口，异步任务直接调用，不排除任何医院
func (s *SurplusService) ScanNeeds(ctx context.Context) ([]NeedLine, error) {
	return s.scanNeeds(ctx, constants.ComponentKinds, 0)
}

// ScanNeedsFor 单一成分的短缺扫描
func (s *SurplusService) ScanNeedsFor(ctx context.Context, kind string) ([]NeedLine, error) {
	if !constants.IsComponentKind(kind) {
		return nil, NewValidationError("unknown component kind")
	}
	return s.scanNeeds(ctx, []string{kind}, 0)
}

// scanNeeds 枚举短缺组合；excludeHospitalID 非零时跳过该医院
func (s *SurplusService) scanNeeds(ctx context.Context, kinds []string, excludeHospitalID uint) ([]NeedLine, error) {
	hospitals, err := s.listHospitals(ctx)
	if err != nil {
		return nil, err
	}
	threshold := s.lowStockThreshold()

	type comboKey struct {
		hospitalID uint
		bloodType  string
		rh         string
	}

	lines := make([]NeedLine, 0)
	for _, k := range kinds {
		aggregates, err := s.aggregate(ctx, k, 0)
		if err != nil {
			return nil, err
		}
		stock := make(map[comboKey]int64, len(aggregates))
		for _, agg := range aggregates {
			stock[comboKey{agg.HospitalID, agg.BloodType, agg.Rh}] = agg.Units
		}
		for _, hospital := range hospitals {
			if excludeHospitalID != 0 && hospital.ID == excludeHospitalID {
				continue
			}
			for _, bloodType := range constants.BloodTypes {
				for _, rh := range rhVariants(k) {
					units := stock[comboKey{hospital.ID, bloodType, rh}]
					if units >= int64(threshold) {
						continue
					}
					lines = append(lines, NeedLine{
						HospitalID:   hospital.ID,
						HospitalName: hospital.Name,
						Kind:         k,
						BloodType:    bloodType,
						Rh:           rh,
						Units:        units,
						Deficit:      int64(threshold) - units,
						Threshold:    threshold,
					})
				}
			}
		}
	}
	return lines, nil
}

func (s *SurplusService) listHospitals(ctx context.Context) ([]models.Hospital, error) {
	if s.guard.FallbackMode() {
		return fallback.Hospitals(), nil
	}
	return s.hospitalRepo.List(ctx)
}

// RecordTransfer 登记一笔富余调拨
// 只追加台账，不触碰任何库存行
func (s *SurplusService) RecordTransfer(ctx context.Context, identity *Identity, input TransferInput) (*models.SurplusTransfer, error) {
	if identity == nil || identity.AdminID == 0 {
		return nil, ErrUnauthorized
	}
	from := identity.HospitalID
	if from == 0 {
		return nil, ErrForbidden
	}
	if input.ToHospitalID == 0 {
		return nil, NewValidationError("to_hospital_id is required")
	}
	if input.ToHospitalID == from {
		return nil, NewValidationError("cannot transfer to the same hospital")
	}
	if !constants.IsComponentKind(input.Kind) {
		return nil, NewValidationError("unknown component kind")
	}
	if !constants.IsBloodType(input.BloodType) {
		return nil, NewValidationError("invalid blood type")
	}
	if constants.KindHasRh(input.Kind) {
		if !constants.IsRh(input.Rh, false) {
			return nil, NewValidationError("rh factor must be + or -")
		}
	} else if input.Rh != "" {
		return nil, NewValidationError("plasma transfers do not carry an rh factor")
	}
	if input.Units <= 0 {
		return nil, NewValidationError("units must be positive")
	}
	if input.AmountML <= 0 {
		return nil, NewValidationError("amount_ml must be positive")
	}

	transfer := &models.SurplusTransfer{
		FromHospitalID: from,
		ToHospitalID:   input.ToHospitalID,
		ComponentKind:  input.Kind,
		BloodType:      input.BloodType,
		Rh:             input.Rh,
		Units:          input.Units,
		AmountML:       input.AmountML,
	}

	if s.guard.FallbackMode() {
		transfer.CreatedAt = time.Now()
		logger.Infow("surplus_transfer_simulated", "mode", fallback.Label)
		return transfer, nil
	}

	destination, err := s.hospitalRepo.GetByID(ctx, input.ToHospitalID)
	if err != nil {
		return nil, err
	}
	if destination == nil {
		return nil, ErrNotFound
	}

	if err := s.transferRepo.Create(ctx, transfer); err != nil {
		return nil, err
	}
	logger.Infow("surplus_transfer_recorded",
		"from_hospital_id", transfer.FromHospitalID,
		"to_hospital_id", transfer.ToHospitalID,
		"kind", transfer.ComponentKind,
		"units", transfer.Units,
		"admin_id", identity.AdminID,
	)
	return transfer, nil
}

// TransferHistory 查询与本院相关的调拨台账（调出或调入）
func (s *SurplusService) TransferHistory(ctx context.Context, identity *Identity, hospitalID uint, filter repository.TransferListFilter) ([]models.SurplusTransfer, int64, error) {
	target, err := ScopeHospital(identity, hospitalID)
	if err != nil {
		return nil, 0, err
	}
	if err := AuthorizeHospital(identity, target); err != nil {
		return nil, 0, err
	}
	if filter.Kind != "" && !constants.IsComponentKind(filter.Kind) {
		return nil, 0, NewValidationError("unknown component kind")
	}

	if s.guard.FallbackMode() {
		transfers, total := fallback.Transfers(target, filter)
		return transfers, total, nil
	}
	return s.transferRepo.ListByHospital(ctx, target, filter)
}
