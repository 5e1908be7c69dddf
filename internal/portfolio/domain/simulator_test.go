package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/portfolioanalytics/pkg/algos"
	"github.com/wyfcoding/portfolioanalytics/pkg/utils"
)

var fixedNow = time.Date(2024, 6, 30, 9, 30, 0, 0, time.UTC)

func newTestSimulator(seed int64) *Simulator {
	return NewSimulator(NewRandomWalk(rand.New(rand.NewSource(seed))), func() time.Time { return fixedNow })
}

func TestGenerateShape(t *testing.T) {
	p, err := newTestSimulator(42).Generate("demo-user", DefaultStartValue, DefaultSeedDays)
	require.NoError(t, err)

	returns := p.Performance.Returns
	require.Len(t, returns, DefaultSeedDays)
	assert.Equal(t, "2024-06-30", returns[len(returns)-1].Date)
	assert.Equal(t, "2024-01-03", returns[0].Date)
	for i := 1; i < len(returns); i++ {
		assert.Less(t, returns[i-1].Date, returns[i].Date)
	}

	last := returns[len(returns)-1].Value
	assert.Equal(t, "demo-user", p.UserID)
	assert.Equal(t, last, p.TotalValue)
	assert.Equal(t, utils.Round2(last*CashRatio), p.CashBalance)
	assert.Len(t, p.Positions, 4)
	assert.Equal(t, fixedNow, p.LastUpdated)
	assert.GreaterOrEqual(t, p.Performance.MaxDrawdown, 0.0)
	assert.Equal(t, utils.Round2(last-DefaultStartValue), p.Performance.TotalPnL)
	assert.Equal(t, utils.Round2(last-returns[len(returns)-2].Value), p.Performance.DailyPnL)
}

func TestGenerateIsReproducible(t *testing.T) {
	a, err := newTestSimulator(7).Generate("u", 1000, 30)
	require.NoError(t, err)
	b, err := newTestSimulator(7).Generate("u", 1000, 30)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := newTestSimulator(8).Generate("u", 1000, 30)
	require.NoError(t, err)
	assert.NotEqual(t, a.Performance.Returns, c.Performance.Returns)
}

func TestGenerateRejectsShortSeries(t *testing.T) {
	_, err := newTestSimulator(1).Generate("u", 1000, 1)
	assert.ErrorIs(t, err, algos.ErrInsufficientData)

	_, err = newTestSimulator(1).Generate("u", 0, 10)
	assert.ErrorIs(t, err, algos.ErrInsufficientData)
}

func TestRandomWalkStepBounds(t *testing.T) {
	w := NewRandomWalk(rand.New(rand.NewSource(3)))
	drift := w.AnnualDrift / w.TradingDays
	for i := 0; i < 1000; i++ {
		pm, bm := w.Step()
		assert.LessOrEqual(t, pm, w.DailyVolatility+w.PortfolioNoise/2+drift)
		assert.GreaterOrEqual(t, pm, -w.DailyVolatility-w.PortfolioNoise/2+drift)
		assert.LessOrEqual(t, bm, w.DailyVolatility+w.BenchmarkNoise/2+drift*w.BenchmarkDrift)
	}
}
