package service

import (
	"errors"
	"testing"
)

func TestAuthorizeHospital(t *testing.T) {
	staff := &Identity{AdminID: 1, HospitalID: 3}
	super := &Identity{AdminID: 2, HospitalID: 1, IsSuper: true}

	if err := AuthorizeHospital(staff, 3); err != nil {
		t.Fatalf("staff should access own hospital: %v", err)
	}
	if err := AuthorizeHospital(staff, 4); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign hospital, got %v", err)
	}
	if err := AuthorizeHospital(super, 4); err != nil {
		t.Fatalf("super should access any hospital: %v", err)
	}
	if err := AuthorizeHospital(nil, 3); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for nil identity, got %v", err)
	}
	if err := AuthorizeHospital(&Identity{}, 3); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty identity, got %v", err)
	}
	if err := AuthorizeHospital(&Identity{AdminID: 5}, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("staff without hospital should be forbidden, got %v", err)
	}
}

func TestScopeHospital(t *testing.T) {
	staff := &Identity{AdminID: 1, HospitalID: 3}
	super := &Identity{AdminID: 2, HospitalID: 1, IsSuper: true}

	// 普通管理员忽略请求中的医院参数
	if got, err := ScopeHospital(staff, 9); err != nil || got != 3 {
		t.Fatalf("expected staff scoped to own hospital, got %d err %v", got, err)
	}
	if got, err := ScopeHospital(super, 9); err != nil || got != 9 {
		t.Fatalf("expected super to pick requested hospital, got %d err %v", got, err)
	}
	if got, err := ScopeHospital(super, 0); err != nil || got != 1 {
		t.Fatalf("expected super to fall back to own hospital, got %d err %v", got, err)
	}
	if _, err := ScopeHospital(nil, 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
