package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
// super 不设限制；staff 覆盖库存与调拨的日常操作，系统诊断与账号管理除外
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleSuper,
			Policies: []Policy{
				{Object: "/*", Action: "*"},
			},
		},
		{
			Role: RoleStaff,
			Policies: []Policy{
				{Object: "/me", Action: "GET"},
				{Object: "/me/password", Action: "PUT"},
				{Object: "/auth/logout", Action: "POST"},
				{Object: "/inventory/:kind", Action: "*"},
				{Object: "/inventory/:kind/:bag_id", Action: "*"},
				{Object: "/inventory/:kind/:bag_id/restore", Action: "POST"},
				{Object: "/surplus", Action: "GET"},
				{Object: "/surplus/needs", Action: "GET"},
				{Object: "/surplus/transfers", Action: "*"},
				{Object: "/hospitals", Action: "GET"},
				{Object: "/dashboard", Action: "GET"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
