package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bloodlink-next/internal/config"
	"github.com/bloodlink-next/internal/constants"
	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/repository"
	"github.com/bloodlink-next/internal/store"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupSurplusServiceTest(t *testing.T) (*SurplusService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:surplus_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Hospital{},
		&models.RedCellUnit{},
		&models.PlasmaUnit{},
		&models.PlateletUnit{},
		&models.SurplusTransfer{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.Stock.SurplusUnits = 3
	cfg.Stock.LowStockUnits = 2
	guard := store.NewGuard(db, store.Config{})
	svc := NewSurplusService(cfg, guard,
		repository.NewInventoryRepository(guard),
		repository.NewHospitalRepository(guard),
		repository.NewTransferRepository(guard),
	)
	return svc, db
}

func createTestHospital(t *testing.T, db *gorm.DB, id uint, name string) {
	t.Helper()
	if err := db.Create(&models.Hospital{ID: id, Name: name}).Error; err != nil {
		t.Fatalf("create hospital failed: %v", err)
	}
}

func seedRedCells(t *testing.T, db *gorm.DB, hospitalID uint, bloodType, rh string, count int, active bool) {
	t.Helper()
	for i := 0; i < count; i++ {
		unit := models.RedCellUnit{
			BagID:      fmt.Sprintf("RC-%d-%s%s-%d-%v", hospitalID, bloodType, rh, i, active),
			HospitalID: hospitalID,
			DonorName:  "Seed Donor",
			BloodType:  bloodType,
			Rh:         rh,
			AmountML:   450,
			ExpiresOn:  time.Now().AddDate(0, 0, 14),
			IsActive:   active,
		}
		if err := db.Create(&unit).Error; err != nil {
			t.Fatalf("seed red cell failed: %v", err)
		}
	}
}

func TestSurplusServiceSurplusFor(t *testing.T) {
	svc, db := setupSurplusServiceTest(t)
	ctx := context.Background()
	createTestHospital(t, db, 1, "Central")
	staff := &Identity{AdminID: 1, HospitalID: 1}

	// A+ 超过阈值 3，O- 恰好在阈值上，软删除不计入
	seedRedCells(t, db, 1, "A", "+", 5, true)
	seedRedCells(t, db, 1, "A", "+", 2, false)
	seedRedCells(t, db, 1, "O", "-", 3, true)

	lines, err := svc.SurplusFor(ctx, staff, 0)
	if err != nil {
		t.Fatalf("surplus failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 surplus line, got %+v", lines)
	}
	line := lines[0]
	if line.Kind != constants.ComponentRedCell || line.BloodType != "A" || line.Rh != "+" {
		t.Fatalf("unexpected surplus combo: %+v", line)
	}
	if line.Units != 5 || line.ExtraUnits != 2 {
		t.Fatalf("expected 5 units with 2 extra, got %+v", line)
	}
}

func TestSurplusServiceHospitalsNeedingCountsZeroStock(t *testing.T) {
	svc, db := setupSurplusServiceTest(t)
	ctx := context.Background()
	createTestHospital(t, db, 1, "Central")
	createTestHospital(t, db, 2, "Riverside")
	staff := &Identity{AdminID: 1, HospitalID: 1}

	// 医院 1 只有 A+ 足量，其余组合全部为零库存
	seedRedCells(t, db, 1, "A", "+", 4, true)

	lines, err := svc.HospitalsNeeding(ctx, staff, constants.ComponentRedCell)
	if err != nil {
		t.Fatalf("needs failed: %v", err)
	}

	// 调用方所在的医院 1 被整体排除，只剩医院 2 的 4 血型 x 2 Rh = 8 个零库存组合
	if len(lines) != 8 {
		t.Fatalf("expected 8 need lines, got %d", len(lines))
	}
	foundZero := false
	for _, line := range lines {
		if line.HospitalID == 1 {
			t.Fatalf("caller's own hospital must be excluded from needs: %+v", line)
		}
		if line.Units == 0 && line.Deficit != 2 {
			t.Fatalf("zero-stock combo should have full deficit: %+v", line)
		}
		if line.HospitalID == 2 && line.BloodType == "O" && line.Rh == "-" {
			foundZero = true
			if line.HospitalName != "Riverside" {
				t.Fatalf("expected hospital name resolved, got %+v", line)
			}
		}
	}
	if !foundZero {
		t.Fatalf("zero-stock combo missing from need lines")
	}

	// 异步扫描入口不排除任何医院：医院 1 除 A+ 外的 7 个组合也计入
	scan, err := svc.ScanNeedsFor(ctx, constants.ComponentRedCell)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(scan) != 15 {
		t.Fatalf("expected 15 scan lines, got %d", len(scan))
	}
	for _, line := range scan {
		if line.HospitalID == 1 && line.BloodType == "A" && line.Rh == "+" {
			t.Fatalf("A+ at hospital 1 should not be needy: %+v", line)
		}
	}

	if _, err := svc.HospitalsNeeding(ctx, nil, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.HospitalsNeeding(ctx, staff, "bones"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSurplusServiceRecordTransfer(t *testing.T) {
	svc, db := setupSurplusServiceTest(t)
	ctx := context.Background()
	createTestHospital(t, db, 1, "Central")
	createTestHospital(t, db, 2, "Riverside")
	staff := &Identity{AdminID: 1, HospitalID: 1}
	seedRedCells(t, db, 1, "A", "+", 5, true)

	input := TransferInput{
		ToHospitalID: 2,
		Kind:         constants.ComponentRedCell,
		BloodType:    "A",
		Rh:           "+",
		Units:        2,
		AmountML:     900,
	}
	transfer, err := svc.RecordTransfer(ctx, staff, input)
	if err != nil {
		t.Fatalf("record transfer failed: %v", err)
	}
	if transfer.FromHospitalID != 1 || transfer.ToHospitalID != 2 {
		t.Fatalf("unexpected transfer: %+v", transfer)
	}

	// 台账与库存解耦：登记不触碰库存行
	var activeCount int64
	if err := db.Model(&models.RedCellUnit{}).Where("hospital_id = ? AND is_active = ?", 1, true).Count(&activeCount).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if activeCount != 5 {
		t.Fatalf("transfer must not move inventory, active count = %d", activeCount)
	}

	// 自转与未知目标医院被拒绝
	bad := input
	bad.ToHospitalID = 1
	if _, err := svc.RecordTransfer(ctx, staff, bad); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for self transfer, got %v", err)
	}
	bad = input
	bad.ToHospitalID = 99
	if _, err := svc.RecordTransfer(ctx, staff, bad); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown hospital, got %v", err)
	}
	bad = input
	bad.Units = 0
	if _, err := svc.RecordTransfer(ctx, staff, bad); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for zero units, got %v", err)
	}

	history, total, err := svc.TransferHistory(ctx, staff, 0, repository.TransferListFilter{})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if total != 1 || len(history) != 1 {
		t.Fatalf("expected 1 ledger row, got total=%d len=%d", total, len(history))
	}

	// 调入方也能看到这笔记录
	receiver := &Identity{AdminID: 2, HospitalID: 2}
	history, _, err = svc.TransferHistory(ctx, receiver, 0, repository.TransferListFilter{})
	if err != nil {
		t.Fatalf("receiver history failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("receiver should see incoming transfer, got %d", len(history))
	}

	// 无关医院看不到
	bystander := &Identity{AdminID: 3, HospitalID: 3}
	history, _, err = svc.TransferHistory(ctx, bystander, 0, repository.TransferListFilter{})
	if err != nil {
		t.Fatalf("bystander history failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("bystander should see no transfers, got %d", len(history))
	}
}

func TestSurplusServiceFallbackAggregation(t *testing.T) {
	cfg := &config.Config{}
	cfg.Stock.SurplusUnits = 1
	cfg.Stock.LowStockUnits = 2
	guard := store.NewGuard(nil, store.Config{})
	svc := NewSurplusService(cfg, guard, nil, nil, nil)
	ctx := context.Background()
	demo := &Identity{AdminID: 1, HospitalID: 1, IsSuper: true}

	lines, err := svc.SurplusFor(ctx, demo, 1)
	if err != nil {
		t.Fatalf("fallback surplus failed: %v", err)
	}
	if len(lines) == 0 {
		t.Fatalf("expected demo surplus lines with threshold 1")
	}

	needs, err := svc.HospitalsNeeding(ctx, demo, "")
	if err != nil {
		t.Fatalf("fallback needs failed: %v", err)
	}
	if len(needs) == 0 {
		t.Fatalf("expected demo need lines")
	}

	transfer, err := svc.RecordTransfer(ctx, demo, TransferInput{
		ToHospitalID: 2,
		Kind:         constants.ComponentPlasma,
		BloodType:    "O",
		Units:        1,
		AmountML:     250,
	})
	if err != nil {
		t.Fatalf("fallback transfer failed: %v", err)
	}
	if transfer.CreatedAt.IsZero() {
		t.Fatalf("simulated transfer should carry a timestamp")
	}
}
