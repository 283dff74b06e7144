package constants

// 血液成分类型常量
const (
	ComponentRedCell  = "redcell"
	ComponentPlasma   = "plasma"
	ComponentPlatelet = "platelet"
)

// ComponentKinds 支持的成分类型集合
var ComponentKinds = []string{
	ComponentRedCell,
	ComponentPlasma,
	ComponentPlatelet,
}

// 血型常量
const (
	BloodTypeA  = "A"
	BloodTypeB  = "B"
	BloodTypeAB = "AB"
	BloodTypeO  = "O"
)

// BloodTypes 支持的血型集合
var BloodTypes = []string{
	BloodTypeA,
	BloodTypeB,
	BloodTypeAB,
	BloodTypeO,
}

// Rh 因子常量（血浆不区分 Rh，存空串）
const (
	RhPositive = "+"
	RhNegative = "-"
	RhNone     = ""
)

// 过期状态过滤常量
const (
	ExpiryFilterAll     = "all"
	ExpiryFilterValid   = "valid"
	ExpiryFilterExpired = "expired"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskSessionPurge = "session:purge"
	TaskLowStockScan = "stock:low_scan"
)

// IsComponentKind 判断是否为合法成分类型
func IsComponentKind(kind string) bool {
	for _, k := range ComponentKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsBloodType 判断是否为合法血型
func IsBloodType(bloodType string) bool {
	for _, t := range BloodTypes {
		if t == bloodType {
			return true
		}
	}
	return false
}

// IsRh 判断是否为合法 Rh 因子（allowEmpty 用于血浆）
func IsRh(rh string, allowEmpty bool) bool {
	switch rh {
	case RhPositive, RhNegative:
		return true
	case RhNone:
		return allowEmpty
	default:
		return false
	}
}

// IsExpiryFilter 判断是否为合法过期过滤条件（空串等同 all）
func IsExpiryFilter(filter string) bool {
	switch filter {
	case "", ExpiryFilterAll, ExpiryFilterValid, ExpiryFilterExpired:
		return true
	default:
		return false
	}
}

// KindHasRh 判断成分类型是否携带 Rh 属性
func KindHasRh(kind string) bool {
	return kind != ComponentPlasma
}
