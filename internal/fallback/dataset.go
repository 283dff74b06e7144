package fallback

import (
	"sort"
	"strings"
	"time"

	"github.com/bloodlink-next/internal/constants"
	"github.com/bloodlink-next/internal/models"
	"github.com/bloodlink-next/internal/repository"
)

// Label 降级数据的统一标记，所有演示响应都会携带
const Label = "demo"

// Admin 演示管理员（凭据为明文，仅存在于进程内）
type Admin struct {
	ID         uint
	Username   string
	Credential string
	HospitalID uint
	IsSuper    bool
}

var demoHospitals = []models.Hospital{
	{ID: 1, Name: "Demo Central Hospital", Location: "Metro North"},
	{ID: 2, Name: "Demo Riverside Clinic", Location: "Riverside District"},
	{ID: 3, Name: "Demo St. Catherine Medical Center", Location: "Old Town"},
}

var demoAdmins = []Admin{
	{ID: 1, Username: "demo", Credential: "demo123", HospitalID: 1, IsSuper: true},
	{ID: 2, Username: "riverside", Credential: "riverside123", HospitalID: 2, IsSuper: false},
}

// baseDay 让演示数据的效期相对当前时间滚动，避免数据集整体过期
func baseDay() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func demoUnits() map[string][]models.InventoryUnit {
	day := baseDay()
	return map[string][]models.InventoryUnit{
		constants.ComponentRedCell: {
			unit(constants.ComponentRedCell, "DEMO-RC-001", 1, "Alice Zhang", "A", "+", 450, day.AddDate(0, 0, 21), true),
			unit(constants.ComponentRedCell, "DEMO-RC-002", 1, "Brian Okafor", "A", "+", 450, day.AddDate(0, 0, 18), true),
			unit(constants.ComponentRedCell, "DEMO-RC-003", 1, "Carla Mendes", "O", "-", 450, day.AddDate(0, 0, 5), true),
			unit(constants.ComponentRedCell, "DEMO-RC-004", 1, "Deepak Rao", "B", "+", 450, day.AddDate(0, 0, -2), true),
			unit(constants.ComponentRedCell, "DEMO-RC-005", 2, "Elena Petrova", "O", "+", 450, day.AddDate(0, 0, 30), true),
			unit(constants.ComponentRedCell, "DEMO-RC-006", 2, "Farid Haddad", "AB", "-", 450, day.AddDate(0, 0, 12), false),
		},
		constants.ComponentPlasma: {
			unit(constants.ComponentPlasma, "DEMO-PL-001", 1, "Grace Lin", "AB", "", 250, day.AddDate(0, 6, 0), true),
			unit(constants.ComponentPlasma, "DEMO-PL-002", 1, "Henrik Olsen", "A", "", 250, day.AddDate(0, 4, 0), true),
			unit(constants.ComponentPlasma, "DEMO-PL-003", 2, "Ingrid Svensson", "O", "", 250, day.AddDate(0, 2, 0), true),
		},
		constants.ComponentPlatelet: {
			unit(constants.ComponentPlatelet, "DEMO-PT-001", 1, "Jamal Carter", "B", "-", 200, day.AddDate(0, 0, 4), true),
			unit(constants.ComponentPlatelet, "DEMO-PT-002", 2, "Keiko Tanaka", "A", "+", 200, day.AddDate(0, 0, 3), true),
			unit(constants.ComponentPlatelet, "DEMO-PT-003", 3, "Liam O'Brien", "O", "+", 200, day.AddDate(0, 0, 2), true),
		},
	}
}

func unit(kind, bagID string, hospitalID uint, donor, bloodType, rh string, amountML int, expiresOn time.Time, active bool) models.InventoryUnit {
	created := baseDay().AddDate(0, 0, -7)
	return models.InventoryUnit{
		Kind:       kind,
		BagID:      bagID,
		HospitalID: hospitalID,
		DonorName:  donor,
		BloodType:  bloodType,
		Rh:         rh,
		AmountML:   amountML,
		ExpiresOn:  expiresOn,
		IsActive:   active,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

// Hospitals 演示医院列表
func Hospitals() []models.Hospital {
	out := make([]models.Hospital, len(demoHospitals))
	copy(out, demoHospitals)
	return out
}

// FindAdmin 按用户名查找演示管理员，未找到返回 nil
func FindAdmin(username string) *Admin {
	for i := range demoAdmins {
		if strings.EqualFold(demoAdmins[i].Username, username) {
			a := demoAdmins[i]
			return &a
		}
	}
	return nil
}

// Units 某成分类型的全部演示单位
func Units(kind string) []models.InventoryUnit {
	rows := demoUnits()[kind]
	out := make([]models.InventoryUnit, len(rows))
	copy(out, rows)
	return out
}

// FindUnit 按袋号查找演示单位
func FindUnit(kind, bagID string) *models.InventoryUnit {
	for _, u := range demoUnits()[kind] {
		if u.BagID == bagID {
			return &u
		}
	}
	return nil
}

// ListUnits 在演示数据上套用与数据库路径相同的过滤语义
func ListUnits(filter repository.InventoryListFilter, now time.Time) ([]models.InventoryUnit, int64) {
	matched := make([]models.InventoryUnit, 0)
	for _, u := range demoUnits()[filter.Kind] {
		if !filter.AllHospitals && u.HospitalID != filter.HospitalID {
			continue
		}
		if !filter.IncludeInactive && !u.IsActive {
			continue
		}
		if filter.BloodType != "" && u.BloodType != filter.BloodType {
			continue
		}
		if constants.KindHasRh(filter.Kind) && filter.Rh != "" && u.Rh != filter.Rh {
			continue
		}
		switch filter.ExpiryStatus {
		case constants.ExpiryFilterValid:
			if u.Expired(now) {
				continue
			}
		case constants.ExpiryFilterExpired:
			if !u.Expired(now) {
				continue
			}
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].ExpiresOn.Equal(matched[j].ExpiresOn) {
			return matched[i].BagID < matched[j].BagID
		}
		return matched[i].ExpiresOn.Before(matched[j].ExpiresOn)
	})
	total := int64(len(matched))
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(matched) {
			return []models.InventoryUnit{}, total
		}
		end := start + filter.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total
}

// Aggregate 在演示数据上按（医院, 血型, Rh）聚合在库有效库存
func Aggregate(kind string, hospitalID uint) []repository.StockAggregate {
	type key struct {
		hospitalID uint
		bloodType  string
		rh         string
	}
	acc := make(map[key]*repository.StockAggregate)
	for _, u := range demoUnits()[kind] {
		if !u.IsActive {
			continue
		}
		if hospitalID > 0 && u.HospitalID != hospitalID {
			continue
		}
		k := key{hospitalID: u.HospitalID, bloodType: u.BloodType, rh: u.Rh}
		agg, ok := acc[k]
		if !ok {
			agg = &repository.StockAggregate{HospitalID: u.HospitalID, BloodType: u.BloodType, Rh: u.Rh}
			acc[k] = agg
		}
		agg.Units++
		agg.AmountML += int64(u.AmountML)
	}
	out := make([]repository.StockAggregate, 0, len(acc))
	for _, agg := range acc {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HospitalID != out[j].HospitalID {
			return out[i].HospitalID < out[j].HospitalID
		}
		if out[i].BloodType != out[j].BloodType {
			return out[i].BloodType < out[j].BloodType
		}
		return out[i].Rh < out[j].Rh
	})
	return out
}

// Summary 在演示数据上计算单一成分类型的库存汇总
func Summary(kind string, hospitalID uint, now, soon time.Time) *repository.KindSummary {
	summary := &repository.KindSummary{}
	for _, u := range demoUnits()[kind] {
		if !u.IsActive || u.HospitalID != hospitalID {
			continue
		}
		summary.ActiveUnits++
		summary.AmountML += int64(u.AmountML)
		if u.Expired(now) {
			summary.Expired++
		} else if u.ExpiresOn.Before(soon) {
			summary.ExpiringSoon++
		}
	}
	return summary
}

// Transfers 演示调拨记录（空集，演示模式下的写入只模拟成功不落账）
func Transfers(hospitalID uint, filter repository.TransferListFilter) ([]models.SurplusTransfer, int64) {
	return []models.SurplusTransfer{}, 0
}
