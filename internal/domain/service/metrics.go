package service

import (
	"sort"
	"strings"

	"hlsnap/internal/domain/model"
)

// BuildMetrics 按资产名合并元数据与动态上下文，并派生指标
//
// Context duplicates are last-write-wins; meta duplicates keep the first
// occurrence. Assets present on only one side are dropped and listed in the
// returned JoinStats.
func BuildMetrics(metas []model.AssetMeta, ctxs []model.AssetContext) ([]model.AssetMetrics, model.JoinStats) {
	var stats model.JoinStats

	byName := make(map[string]model.AssetContext, len(ctxs))
	for _, c := range ctxs {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		if _, ok := byName[name]; ok {
			stats.DuplicateContexts = append(stats.DuplicateContexts, name)
		}
		byName[name] = c
	}

	out := make([]model.AssetMetrics, 0, len(metas))
	seen := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			stats.DuplicateMeta = append(stats.DuplicateMeta, name)
			continue
		}
		seen[name] = struct{}{}

		c, ok := byName[name]
		if !ok {
			stats.MissingContext = append(stats.MissingContext, name)
			continue
		}

		out = append(out, model.AssetMetrics{
			Asset:             name,
			FundingRate:       ParseDecimal(c.FundingRate),
			OpenInterestUSD:   ParseDecimal(c.OpenInterest),
			PriceChangePct24h: PriceChangePct(c.MarkPrice, m.PrevDayPrice),
			CurrentPrice:      ParseDecimal(c.MarkPrice),
		})
	}

	for name := range byName {
		if _, ok := seen[name]; !ok {
			stats.MissingMeta = append(stats.MissingMeta, name)
		}
	}
	sort.Strings(stats.MissingMeta)

	return out, stats
}
