package service

import (
	"time"

	"hlsnap/internal/domain/model"
)

// NewReport 组装报告：资金费率正/负榜、持仓量榜、24h 涨幅榜
func NewReport(metrics []model.AssetMetrics, n int, now time.Time) *model.Report {
	n = max(n, 0)
	r := &model.Report{
		TimestampUTC: now.UTC().Format(time.RFC3339Nano),
	}

	r.FundingRates.TopPositive = make([]model.FundingEntry, 0, n)
	for _, e := range TopN(metrics, ByFundingRate, n) {
		r.FundingRates.TopPositive = append(r.FundingRates.TopPositive, model.FundingEntry{Asset: e.Asset, Rate: e.Value})
	}
	r.FundingRates.TopNegative = make([]model.FundingEntry, 0, n)
	for _, e := range BottomN(metrics, ByFundingRate, n) {
		r.FundingRates.TopNegative = append(r.FundingRates.TopNegative, model.FundingEntry{Asset: e.Asset, Rate: e.Value})
	}

	r.OpenInterest.TopByUSDValue = make([]model.OpenInterestEntry, 0, n)
	for _, e := range TopN(metrics, ByOpenInterestUSD, n) {
		r.OpenInterest.TopByUSDValue = append(r.OpenInterest.TopByUSDValue, model.OpenInterestEntry{Asset: e.Asset, OIUSD: e.Value})
	}

	r.PriceMovers24h.TopPositiveChange = make([]model.PriceMoveEntry, 0, n)
	for _, e := range TopN(metrics, ByPriceChangePct24h, n) {
		r.PriceMovers24h.TopPositiveChange = append(r.PriceMovers24h.TopPositiveChange, model.PriceMoveEntry{Asset: e.Asset, ChangePct: e.Value})
	}

	return r
}

// Direction 正数 +1，负数 -1，零 0（供展示层着色）
func Direction(v float64) int {
	switch {
	case v > 0:
		return +1
	case v < 0:
		return -1
	default:
		return 0
	}
}
