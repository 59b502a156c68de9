package model

// DefaultTopN 默认每个榜单的长度
const DefaultTopN = 5

type FundingEntry struct {
	Asset string  `json:"asset"`
	Rate  float64 `json:"rate"`
}

type OpenInterestEntry struct {
	Asset string  `json:"asset"`
	OIUSD float64 `json:"oi_usd"`
}

type PriceMoveEntry struct {
	Asset     string  `json:"asset"`
	ChangePct float64 `json:"change_pct"`
}

type FundingRates struct {
	TopPositive []FundingEntry `json:"top_positive"`
	TopNegative []FundingEntry `json:"top_negative"`
}

type OpenInterest struct {
	TopByUSDValue []OpenInterestEntry `json:"top_by_usd_value"`
}

type PriceMovers struct {
	TopPositiveChange []PriceMoveEntry `json:"top_positive_change"`
}

// Report 汇总报告，唯一持久化的产物
type Report struct {
	TimestampUTC   string       `json:"timestamp_utc"`
	FundingRates   FundingRates `json:"funding_rates"`
	OpenInterest   OpenInterest `json:"open_interest"`
	PriceMovers24h PriceMovers  `json:"price_movers_24h"`
}
