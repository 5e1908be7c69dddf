// Package algos - 收益序列指标（总收益、年化收益、日盈亏、最大回撤）
package algos

import (
	"errors"
	"math"
)

// ErrInsufficientData 序列过短（日盈亏、CAGR、Summarize 需至少两个点）、为空或起始值非法
var ErrInsufficientData = errors.New("insufficient data for series metric")

// DaysPerYear CAGR 年化使用的自然日天数
const DaysPerYear = 365.0

// TotalReturn 总收益率（百分比）= (last - start) / start * 100
func TotalReturn(start, last float64) (float64, error) {
	if start <= 0 {
		return 0, ErrInsufficientData
	}
	return (last - start) / start * 100, nil
}

// CAGR 年化复合增长率（百分比），years = elapsedDays / 365
func CAGR(start, last, elapsedDays float64) (float64, error) {
	if start <= 0 || elapsedDays <= 0 || last < 0 {
		return 0, ErrInsufficientData
	}
	years := elapsedDays / DaysPerYear
	return (math.Pow(last/start, 1/years) - 1) * 100, nil
}

// DailyPnL 最后两个点的差值
func DailyPnL(values []float64) (float64, error) {
	n := len(values)
	if n < 2 {
		return 0, ErrInsufficientData
	}
	return values[n-1] - values[n-2], nil
}

// MaxDrawdown 最大回撤（百分比），单次扫描维护运行峰值，结果 >= 0；单点序列为 0
func MaxDrawdown(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrInsufficientData
	}

	peak := values[0]
	if peak <= 0 {
		return 0, ErrInsufficientData
	}

	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if dd := (peak - v) / peak * 100; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD, nil
}

// Summary 一组序列指标
type Summary struct {
	TotalPnL    float64
	TotalReturn float64
	CAGR        float64
	DailyPnL    float64
	MaxDrawdown float64
}

// Summarize 基于起始值与按时间排序的收盘序列计算全部指标
func Summarize(start float64, values []float64, elapsedDays float64) (Summary, error) {
	if len(values) < 2 {
		return Summary{}, ErrInsufficientData
	}
	last := values[len(values)-1]

	tr, err := TotalReturn(start, last)
	if err != nil {
		return Summary{}, err
	}
	cagr, err := CAGR(start, last, elapsedDays)
	if err != nil {
		return Summary{}, err
	}
	pnl, err := DailyPnL(values)
	if err != nil {
		return Summary{}, err
	}
	dd, err := MaxDrawdown(values)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		TotalPnL:    last - start,
		TotalReturn: tr,
		CAGR:        cagr,
		DailyPnL:    pnl,
		MaxDrawdown: dd,
	}, nil
}
