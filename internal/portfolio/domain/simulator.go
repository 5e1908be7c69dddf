package domain

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/wyfcoding/portfolioanalytics/pkg/algos"
	"github.com/wyfcoding/portfolioanalytics/pkg/utils"
)

const (
	DefaultStartValue = 10_000_000.0
	DefaultSeedDays   = 180
	// CashRatio 种子组合现金占比
	CashRatio = 0.15
)

// RandomWalk 带漂移的随机游走，组合与基准共享市场因子
type RandomWalk struct {
	DailyVolatility float64 // sigma
	AnnualDrift     float64 // mu
	TradingDays     float64
	PortfolioNoise  float64
	BenchmarkNoise  float64
	BenchmarkDrift  float64 // 基准漂移相对组合的比例

	mu   sync.Mutex
	rand *rand.Rand
}

// NewRandomWalk 使用默认参数创建；rnd 为 nil 时按当前时间取种
func NewRandomWalk(rnd *rand.Rand) *RandomWalk {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomWalk{
		DailyVolatility: 0.01,
		AnnualDrift:     0.15,
		TradingDays:     252,
		PortfolioNoise:  0.005,
		BenchmarkNoise:  0.003,
		BenchmarkDrift:  0.8,
		rand:            rnd,
	}
}

// Step 生成一天的组合与基准涨跌幅
func (w *RandomWalk) Step() (portfolioMove, benchmarkMove float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	dailyDrift := w.AnnualDrift / w.TradingDays
	market := (w.rand.Float64() - 0.5) * 2 * w.DailyVolatility
	portfolioMove = market + (w.rand.Float64()-0.5)*w.PortfolioNoise + dailyDrift
	benchmarkMove = market + (w.rand.Float64()-0.5)*w.BenchmarkNoise + dailyDrift*w.BenchmarkDrift
	return portfolioMove, benchmarkMove
}

// Series 从 start 起模拟 days 个日收盘，日期为截止 end 的最近 days 个自然日
func (w *RandomWalk) Series(start float64, days int, end time.Time) []ReturnPoint {
	dates := utils.TrailingDates(end, days)
	points := make([]ReturnPoint, days)

	value, benchmark := start, start
	for i := 0; i < days; i++ {
		pm, bm := w.Step()
		value *= 1 + pm
		benchmark *= 1 + bm
		points[i] = ReturnPoint{
			Date:      dates[i],
			Value:     utils.Round2(value),
			Benchmark: utils.Round2(benchmark),
		}
	}
	return points
}

// SeedPositions 种子组合的固定持仓
func SeedPositions() []Position {
	return []Position{
		{Symbol: "RELIANCE.NS", Quantity: 100, AveragePrice: 2500, CurrentPrice: 2750},
		{Symbol: "TCS.NS", Quantity: 50, AveragePrice: 3500, CurrentPrice: 3800},
		{Symbol: "HDFCBANK.NS", Quantity: 150, AveragePrice: 1600, CurrentPrice: 1750},
		{Symbol: "INFY.NS", Quantity: 200, AveragePrice: 1400, CurrentPrice: 1550},
	}
}

// Simulator 生成演示组合
type Simulator struct {
	walk *RandomWalk
	now  func() time.Time
}

// NewSimulator 创建模拟器；now 为 nil 时使用 time.Now
func NewSimulator(walk *RandomWalk, now func() time.Time) *Simulator {
	if walk == nil {
		walk = NewRandomWalk(nil)
	}
	if now == nil {
		now = time.Now
	}
	return &Simulator{walk: walk, now: now}
}

// Generate 为 userID 生成完整组合，绩效指标保留两位小数
func (s *Simulator) Generate(userID string, startValue float64, days int) (*Portfolio, error) {
	if days < 2 || startValue <= 0 {
		return nil, fmt.Errorf("generate portfolio: %w", algos.ErrInsufficientData)
	}

	now := s.now()
	returns := s.walk.Series(startValue, days, now)

	values := make([]float64, len(returns))
	for i, r := range returns {
		values[i] = r.Value
	}

	summary, err := algos.Summarize(startValue, values, float64(days-1))
	if err != nil {
		return nil, fmt.Errorf("generate portfolio: %w", err)
	}

	last := values[len(values)-1]
	return &Portfolio{
		UserID:      userID,
		TotalValue:  last,
		CashBalance: utils.Round2(last * CashRatio),
		Positions:   SeedPositions(),
		Performance: Performance{
			DailyPnL:    utils.Round2(summary.DailyPnL),
			TotalPnL:    utils.Round2(summary.TotalPnL),
			ROI:         utils.Round2(summary.TotalReturn),
			CAGR:        utils.Round2(summary.CAGR),
			MaxDrawdown: utils.Round2(summary.MaxDrawdown),
			Returns:     returns,
		},
		LastUpdated: now,
	}, nil
}
