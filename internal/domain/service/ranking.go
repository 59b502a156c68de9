package service

import (
	"sort"

	"hlsnap/internal/domain/model"
)

// Selector picks one metric out of AssetMetrics; nil means the metric is absent.
type Selector func(model.AssetMetrics) *float64

func ByFundingRate(m model.AssetMetrics) *float64       { return m.FundingRate }
func ByOpenInterestUSD(m model.AssetMetrics) *float64   { return m.OpenInterestUSD }
func ByPriceChangePct24h(m model.AssetMetrics) *float64 { return m.PriceChangePct24h }

// SortedDesc 过滤 nil 后按数值降序排列，数值相同时按资产名升序
func SortedDesc(metrics []model.AssetMetrics, sel Selector) []model.Ranked {
	out := make([]model.Ranked, 0, len(metrics))
	for _, m := range metrics {
		v := sel(m)
		if v == nil {
			continue
		}
		out = append(out, model.Ranked{Asset: m.Asset, Value: *v})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Asset < out[j].Asset
	})
	return out
}

// TopN returns the n highest values, highest first.
func TopN(metrics []model.AssetMetrics, sel Selector, n int) []model.Ranked {
	sorted := SortedDesc(metrics, sel)
	if n <= 0 {
		return []model.Ranked{}
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// BottomN returns the n lowest values, lowest first. It is the tail of the
// SortedDesc list, reversed.
func BottomN(metrics []model.AssetMetrics, sel Selector, n int) []model.Ranked {
	sorted := SortedDesc(metrics, sel)
	if n <= 0 {
		return []model.Ranked{}
	}
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	out := make([]model.Ranked, len(sorted))
	for i, r := range sorted {
		out[len(sorted)-1-i] = r
	}
	return out
}
