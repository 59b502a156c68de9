package service

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal 将交易所返回的十进制字符串解析为 float64
// 空串、非数字、NaN/Inf 均返回 nil，永不 panic
func ParseDecimal(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// PriceChangePct 计算 24h 涨跌幅（百分比）
// previous 为 0、任一输入无法解析或结果溢出时返回 nil
func PriceChangePct(current, previous string) *float64 {
	cur := ParseDecimal(current)
	prev := ParseDecimal(previous)
	if cur == nil || prev == nil || *prev == 0 {
		return nil
	}
	v := (*cur / *prev - 1) * 100
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
