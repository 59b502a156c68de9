package model

// AssetMeta 资产静态元数据（来自 universe）
type AssetMeta struct {
	Name         string `json:"name"`
	PrevDayPrice string `json:"prev_day_px"` // 前一日参考价，可能为空
}

// AssetContext 资产动态状态
// 所有数值保持交易所返回的字符串形式，解析放在 domain/service 中完成
type AssetContext struct {
	Name         string `json:"name"`
	FundingRate  string `json:"funding"`
	OpenInterest string `json:"open_interest"` // 以计价货币（USD）计
	MarkPrice    string `json:"mark_px"`
}

// AssetMetrics 单次运行派生出的指标，nil 表示无法解析
type AssetMetrics struct {
	Asset             string
	FundingRate       *float64
	OpenInterestUSD   *float64
	PriceChangePct24h *float64
	CurrentPrice      *float64
}

// Ranked is one entry of a ranked metric list.
type Ranked struct {
	Asset string
	Value float64
}

// JoinStats records assets dropped while joining metadata with contexts.
type JoinStats struct {
	MissingContext    []string // meta without context
	MissingMeta       []string // context without meta
	DuplicateContexts []string
	DuplicateMeta     []string
}
