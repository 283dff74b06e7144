package fallback

import (
	"strings"
	"testing"
	"time"

	"github.com/bloodlink-next/internal/constants"
	"github.com/bloodlink-next/internal/repository"
)

func TestDemoDatasetLabeled(t *testing.T) {
	for _, hospital := range Hospitals() {
		if !strings.HasPrefix(hospital.Name, "Demo") {
			t.Fatalf("demo hospital not labeled: %q", hospital.Name)
		}
	}
}

func TestFindAdmin(t *testing.T) {
	if FindAdmin("demo") == nil {
		t.Fatalf("expected demo admin")
	}
	if FindAdmin("DEMO") == nil {
		t.Fatalf("username lookup should be case-insensitive")
	}
	if FindAdmin("ghost") != nil {
		t.Fatalf("unexpected admin for unknown username")
	}
}

func TestUnitsShape(t *testing.T) {
	for _, kind := range constants.ComponentKinds {
		units := Units(kind)
		if len(units) == 0 {
			t.Fatalf("no demo units for %s", kind)
		}
		for _, u := range units {
			if u.Kind != kind {
				t.Fatalf("unit kind mismatch: %+v", u)
			}
			if constants.KindHasRh(kind) {
				if u.Rh != constants.RhPositive && u.Rh != constants.RhNegative {
					t.Fatalf("missing rh on %s unit: %+v", kind, u)
				}
			} else if u.Rh != "" {
				t.Fatalf("plasma unit carries rh: %+v", u)
			}
		}
	}
}

func TestListUnitsFilters(t *testing.T) {
	now := time.Now()

	units, total := ListUnits(repository.InventoryListFilter{
		Kind:       constants.ComponentRedCell,
		HospitalID: 1,
	}, now)
	if total == 0 {
		t.Fatalf("expected hospital 1 red cells")
	}
	for _, u := range units {
		if u.HospitalID != 1 || !u.IsActive {
			t.Fatalf("filter leaked unit: %+v", u)
		}
	}

	// 软删除样本默认不可见
	_, withInactive := ListUnits(repository.InventoryListFilter{
		Kind:            constants.ComponentRedCell,
		HospitalID:      2,
		IncludeInactive: true,
	}, now)
	_, activeOnly := ListUnits(repository.InventoryListFilter{
		Kind:       constants.ComponentRedCell,
		HospitalID: 2,
	}, now)
	if withInactive <= activeOnly {
		t.Fatalf("expected inactive demo unit at hospital 2: %d vs %d", withInactive, activeOnly)
	}

	// 过期过滤
	expired, _ := ListUnits(repository.InventoryListFilter{
		Kind:         constants.ComponentRedCell,
		HospitalID:   1,
		ExpiryStatus: constants.ExpiryFilterExpired,
	}, now)
	for _, u := range expired {
		if !u.Expired(now) {
			t.Fatalf("valid unit in expired filter: %+v", u)
		}
	}

	// 分页
	paged, pagedTotal := ListUnits(repository.InventoryListFilter{
		Kind:       constants.ComponentRedCell,
		HospitalID: 1,
		Page:       1,
		PageSize:   2,
	}, now)
	if len(paged) > 2 {
		t.Fatalf("page size not honored: %d", len(paged))
	}
	if pagedTotal < int64(len(paged)) {
		t.Fatalf("total smaller than page: %d < %d", pagedTotal, len(paged))
	}
}

func TestAggregateSkipsInactive(t *testing.T) {
	aggregates := Aggregate(constants.ComponentRedCell, 0)
	if len(aggregates) == 0 {
		t.Fatalf("expected red cell aggregates")
	}
	var total int64
	for _, agg := range aggregates {
		total += agg.Units
	}
	var active int64
	for _, u := range Units(constants.ComponentRedCell) {
		if u.IsActive {
			active++
		}
	}
	if total != active {
		t.Fatalf("aggregate should cover active units only: %d != %d", total, active)
	}
}
