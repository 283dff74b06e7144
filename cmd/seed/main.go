package main

import (
	"time"

	"github.com/bloodlink-next/internal/config"
	"github.com/bloodlink-next/internal/constants"
	"github.com/bloodlink-next/internal/logger"
	"github.com/bloodlink-next/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if cfg.Database.Unconfigured() {
		stdLog.Fatalf("数据库未配置，seed 需要真实数据库连接")
	}
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库连接失败: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 添加医院
	hospitals := []models.Hospital{
		{Name: "Central General Hospital", Location: "12 Harbor Ave"},
		{Name: "Riverside Medical Center", Location: "300 River St"},
		{Name: "Northgate Clinic", Location: "88 North Rd"},
	}
	for i := range hospitals {
		var existing models.Hospital
		if err := models.DB.Where("name = ?", hospitals[i].Name).First(&existing).Error; err == nil {
			hospitals[i] = existing
			continue
		}
		if err := models.DB.Create(&hospitals[i]).Error; err != nil {
			stdLog.Fatalf("创建医院失败 %s: %v", hospitals[i].Name, err)
		}
	}

	// 添加管理员（admin 为超级管理员，其余为单院员工）
	admins := []struct {
		username string
		password string
		hospital int
		isSuper  bool
	}{
		{"admin", "admin123", 0, true},
		{"central", "central123", 0, false},
		{"riverside", "riverside123", 1, false},
		{"northgate", "northgate123", 2, false},
	}
	for _, a := range admins {
		var count int64
		models.DB.Model(&models.Admin{}).Where("username = ?", a.username).Count(&count)
		if count > 0 {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("生成口令哈希失败: %v", err)
		}
		admin := models.Admin{
			Username:   a.username,
			Credential: string(hash),
			HospitalID: hospitals[a.hospital].ID,
			IsSuper:    a.isSuper,
		}
		if err := models.DB.Create(&admin).Error; err != nil {
			stdLog.Fatalf("创建管理员失败 %s: %v", a.username, err)
		}
	}

	// 添加库存样例：覆盖富余（Central 的 A+ 红细胞超阈值）与
	// 短缺（Northgate 几乎空库）两种场景，便于演示 surplus/needs 接口
	now := time.Now()
	seedRedCells(stdLog.Fatalf, hospitals, now)
	seedPlasma(stdLog.Fatalf, hospitals, now)
	seedPlatelets(stdLog.Fatalf, hospitals, now)

	stdLog.Printf("seed 完成: %d 家医院, %d 个管理员", len(hospitals), len(admins))
}

type fatalf func(format string, v ...interface{})

func seedRedCells(fail fatalf, hospitals []models.Hospital, now time.Time) {
	units := []models.RedCellUnit{
		{BagID: "RC-C-0001", HospitalID: hospitals[0].ID, DonorName: "Alice Hart", BloodType: constants.BloodTypeA, Rh: constants.RhPositive, AmountML: 450, ExpiresOn: now.AddDate(0, 0, 35)},
		{BagID: "RC-C-0002", HospitalID: hospitals[0].ID, DonorName: "Ben Okafor", BloodType: constants.BloodTypeA, Rh: constants.RhPositive, AmountML: 450, ExpiresOn: now.AddDate(0, 0, 30)},
		{BagID: "RC-C-0003", HospitalID: hospitals[0].ID, DonorName: "Clara Yu", BloodType: constants.BloodTypeA, Rh: constants.RhPositive, AmountML: 450, ExpiresOn: now.AddDate(0, 0, 28)},
		{BagID: "RC-C-0004", HospitalID: hospitals[0].ID, DonorName: "Derek Mills", BloodType: constants.BloodTypeA, Rh: constants.RhPositive, AmountML: 450, ExpiresOn: now.AddDate(0, 0, 21)},
		{BagID: "RC-C-0005", HospitalID: hospitals[0].ID, DonorName: "Elena Novak", BloodType: constants.BloodTypeA, Rh: constants.RhPositive, AmountML: 450, ExpiresOn: now.AddDate(0, 0, 14)},
		{BagID: "RC-C-0006", HospitalID: hospitals[0].ID, DonorName: "Farid Khan", BloodType: constants.BloodTypeA, Rh: constants.RhPositive, AmountML: 450, ExpiresOn: now.AddDate(0, 0, 10)},
		{BagID: "RC-C-0007", HospitalID: hospitals[0].ID, DonorName: "Grace Lim", BloodType: constants.BloodTypeA, Rh: constants.RhPositive, AmountML: 450, ExpiresOn: now.AddDate(0, 0, 7)},
		{BagID: "RC-C-0008", HospitalID: hospitals[0].ID, DonorName: "Hugo Perez", BloodType: constants.BloodTypeO, Rh: constants.RhNegative, AmountML: 450, ExpiresOn: now.AddDate(0, 0, 25)},
		{BagID: "RC-R-0001", HospitalID: hospitals[1].ID, DonorName: "Ivy Chen", BloodType: constants.BloodTypeB, Rh: constants.RhPositive, AmountML: 450, ExpiresOn: now.AddDate(0, 0, 20)},
		{BagID: "RC-R-0002", HospitalID: hospitals[1].ID, DonorName: "Jonas Berg", BloodType: constants.BloodTypeB, Rh: constants.RhPositive, AmountML: 450, ExpiresOn: now.AddDate(0, 0, 18)},
		{BagID: "RC-R-0003", HospitalID: hospitals[1].ID, DonorName: "Kara Singh", BloodType: constants.BloodTypeO, Rh: constants.RhPositive, AmountML: 450, ExpiresOn: now.AddDate(0, 0, 2)},
		{BagID: "RC-N-0001", HospitalID: hospitals[2].ID, DonorName: "Liam Doyle", BloodType: constants.BloodTypeAB, Rh: constants.RhNegative, AmountML: 450, ExpiresOn: now.AddDate(0, 0, 12)},
	}
	for i := range units {
		units[i].IsActive = true
		var count int64
		models.DB.Model(&models.RedCellUnit{}).Where("bag_id = ?", units[i].BagID).Count(&count)
		if count > 0 {
			continue
		}
		if err := models.DB.Create(&units[i]).Error; err != nil {
			fail("创建红细胞库存失败 %s: %v", units[i].BagID, err)
		}
	}
}

func seedPlasma(fail fatalf, hospitals []models.Hospital, now time.Time) {
	units := []models.PlasmaUnit{
		{BagID: "PL-C-0001", HospitalID: hospitals[0].ID, DonorName: "Mia Torres", BloodType: constants.BloodTypeAB, AmountML: 250, ExpiresOn: now.AddDate(0, 6, 0)},
		{BagID: "PL-C-0002", HospitalID: hospitals[0].ID, DonorName: "Noah Fischer", BloodType: constants.BloodTypeAB, AmountML: 250, ExpiresOn: now.AddDate(0, 5, 0)},
		{BagID: "PL-R-0001", HospitalID: hospitals[1].ID, DonorName: "Omar Haddad", BloodType: constants.BloodTypeO, AmountML: 250, ExpiresOn: now.AddDate(0, 4, 0)},
		{BagID: "PL-R-0002", HospitalID: hospitals[1].ID, DonorName: "Priya Nair", BloodType: constants.BloodTypeA, AmountML: 250, ExpiresOn: now.AddDate(0, 3, 0)},
	}
	for i := range units {
		units[i].IsActive = true
		var count int64
		models.DB.Model(&models.PlasmaUnit{}).Where("bag_id = ?", units[i].BagID).Count(&count)
		if count > 0 {
			continue
		}
		if err := models.DB.Create(&units[i]).Error; err != nil {
			fail("创建血浆库存失败 %s: %v", units[i].BagID, err)
		}
	}
}

func seedPlatelets(fail fatalf, hospitals []models.Hospital, now time.Time) {
	units := []models.PlateletUnit{
		{BagID: "PT-C-0001", HospitalID: hospitals[0].ID, DonorName: "Quinn Walsh", BloodType: constants.BloodTypeA, Rh: constants.RhPositive, AmountML: 200, ExpiresOn: now.AddDate(0, 0, 4)},
		{BagID: "PT-R-0001", HospitalID: hospitals[1].ID, DonorName: "Rosa Marin", BloodType: constants.BloodTypeB, Rh: constants.RhNegative, AmountML: 200, ExpiresOn: now.AddDate(0, 0, 3)},
		{BagID: "PT-N-0001", HospitalID: hospitals[2].ID, DonorName: "Sam Adeyemi", BloodType: constants.BloodTypeO, Rh: constants.RhPositive, AmountML: 200, ExpiresOn: now.AddDate(0, 0, 5)},
	}
	for i := range units {
		units[i].IsActive = true
		var count int64
		models.DB.Model(&models.PlateletUnit{}).Where("bag_id = ?", units[i].BagID).Count(&count)
		if count > 0 {
			continue
		}
		if err := models.DB.Create(&units[i]).Error; err != nil {
			fail("创建血小板库存失败 %s: %v", units[i].BagID, err)
		}
	}
}
