package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestBootstrapRoleMatrix(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	if err := svc.AssignRoleForAdmin(1, true); err != nil {
		t.Fatalf("assign super failed: %v", err)
	}
	if err := svc.AssignRoleForAdmin(2, false); err != nil {
		t.Fatalf("assign staff failed: %v", err)
	}

	// super 全路径放行
	allow, err := svc.EnforceAdmin(1, "/api/v1/system/inventory", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allow {
		t.Fatalf("super should reach system diagnostics")
	}

	// staff 可操作库存
	allow, err = svc.EnforceAdmin(2, "/api/v1/inventory/redcell/BAG-1", "PUT")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allow {
		t.Fatalf("staff should update inventory")
	}

	// staff 进不了系统诊断与账号管理
	for _, obj := range []string{"/api/v1/system/inventory", "/api/v1/admins", "/api/v1/system/status"} {
		allow, err = svc.EnforceAdmin(2, obj, "GET")
		if err != nil {
			t.Fatalf("enforce failed: %v", err)
		}
		if allow {
			t.Fatalf("staff should be denied on %s", obj)
		}
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	if err := svc.AssignRoleForAdmin(5, false); err != nil {
		t.Fatalf("assign staff failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(5)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != RoleStaff {
		t.Fatalf("roles want [%s], got %v", RoleStaff, roles)
	}

	// 提升为超级管理员后旧角色被覆盖
	if err := svc.AssignRoleForAdmin(5, true); err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	roles, err = svc.GetAdminRoles(5)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != RoleSuper {
		t.Fatalf("roles want [%s], got %v", RoleSuper, roles)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/inventory/redcell", want: "/inventory/redcell"},
		{in: "/inventory/redcell", want: "/inventory/redcell"},
		{in: "surplus", want: "/surplus"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}
