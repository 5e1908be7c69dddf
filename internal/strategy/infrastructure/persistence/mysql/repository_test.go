package mysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/portfolioanalytics/internal/strategy/domain"
)

func TestModelRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := domain.SeedStrategies(now)[0]
	s.PrepareInsert(now)

	m, err := toModel(s)
	require.NoError(t, err)
	assert.Equal(t, s.ID.Hex(), m.ID)
	assert.Equal(t, s.Name, m.Name)

	back, err := toDomain(m)
	require.NoError(t, err)
	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.Risk, back.Risk)
	assert.Equal(t, s.RiskMetrics, back.RiskMetrics)
	require.Len(t, back.Trades, len(s.Trades))
	assert.True(t, s.Trades[0].Date.Equal(back.Trades[0].Date))
	require.Len(t, back.Performance.Returns, len(s.Performance.Returns))
	assert.True(t, now.Equal(back.CreatedAt))
}

func TestToDomainListStopsOnBadRow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := domain.SeedStrategies(now)[0]
	s.PrepareInsert(now)
	good, err := toModel(s)
	require.NoError(t, err)

	out, err := toDomainList([]StrategyModel{*good})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	_, err = toDomainList([]StrategyModel{*good, {ID: "bad", Document: "{}"}})
	assert.Error(t, err)
}
