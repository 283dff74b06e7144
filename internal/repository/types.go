package repository

// InventoryListFilter 查询库存列表的过滤条件
type InventoryListFilter struct {
	Page            int
	PageSize        int
	Kind            string
	HospitalID      uint   // 0 仅允许出现在诊断用途的跨院查询
	BloodType       string
	Rh              string
	ExpiryStatus    string // constants.ExpiryFilter*
	IncludeInactive bool
	AllHospitals    bool // 诊断工具专用的跨院逃生口，常规路径禁止
}

// TransferListFilter 查询调拨台账的过滤条件
type TransferListFilter struct {
	Page     int
	PageSize int
	Kind     string
}

// StockAggregate 按（医院, 血型, Rh）聚合的在库有效库存
type StockAggregate struct {
	HospitalID uint   `json:"hospital_id"`
	BloodType  string `json:"blood_type"`
	Rh         string `json:"rh"`
	Units      int64  `json:"units"`
	AmountML   int64  `json:"amount_ml"`
}

// KindSummary 单一成分类型的库存汇总（仪表盘用）
type KindSummary struct {
	ActiveUnits  int64 `json:"active_units"`
	AmountML     int64 `json:"amount_ml"`
	Expired      int64 `json:"expired"`
	ExpiringSoon int64 `json:"expiring_soon"`
}
