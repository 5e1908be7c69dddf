// Package utils 提供日期格式化、金额四舍五入、ID 列表解析等通用工具
package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout 收益序列日期格式 yyyy-MM-dd
const DateLayout = "2006-01-02"

// Round2 四舍五入到 2 位小数
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatDate 格式化为 yyyy-MM-dd
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// TrailingDates 返回截止 end（含）的最近 n 个自然日，按时间升序
func TrailingDates(end time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	dates := make([]string, n)
	for i := 0; i < n; i++ {
		dates[i] = FormatDate(end.AddDate(0, 0, -(n - 1 - i)))
	}
	return dates
}

// SplitCSV 按逗号拆分，去除空白与空项
func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Dedupe 去重并保持首次出现顺序
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
