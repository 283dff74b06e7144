package service

// Identity 已认证请求的主体信息，由会话解析得到
type Identity struct {
	AdminID    uint   `json:"admin_id"`
	HospitalID uint   `json:"hospital_id"`
	Username   string `json:"username"`
	IsSuper    bool   `json:"is_super"`
}

// AuthorizeHospital 判断主体能否操作目标医院的数据
// 纯函数，不访问存储：超级管理员放行任意医院，普通管理员仅放行本院
func AuthorizeHospital(identity *Identity, hospitalID uint) error {
	if identity == nil || identity.AdminID == 0 {
		return ErrUnauthorized
	}
	if identity.IsSuper {
		return nil
	}
	if identity.HospitalID == 0 || identity.HospitalID != hospitalID {
		return ErrForbidden
	}
	return nil
}

// ScopeHospital 解析本次操作实际生效的医院范围
// 普通管理员忽略请求中的医院参数，强制收敛到本院；超级管理员可显式指定，
// 未指定时回落到自己挂靠的医院
func ScopeHospital(identity *Identity, requested uint) (uint, error) {
	if identity == nil || identity.AdminID == 0 {
		return 0, ErrUnauthorized
	}
	if !identity.IsSuper {
		return identity.HospitalID, nil
	}
	if requested > 0 {
		return requested, nil
	}
	return identity.HospitalID, nil
}
