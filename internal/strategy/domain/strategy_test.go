package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRiskOrdering(t *testing.T) {
	assert.Less(t, RiskLow.Severity(), RiskMedium.Severity())
	assert.Less(t, RiskMedium.Severity(), RiskHigh.Severity())
	assert.False(t, Risk("Extreme").Valid())
}

func TestSeedStrategiesAreValid(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	seeds := SeedStrategies(now)
	require.Len(t, seeds, 1)

	s := seeds[0]
	require.NoError(t, s.Validate())
	assert.Equal(t, "Conservative Growth Strategy", s.Name)
	assert.Len(t, s.Performance.Allocation, 5)
	assert.Equal(t, now.Add(-48*time.Hour), s.Trades[2].Date)
	assert.Nil(t, s.Trades[0].PnL)
}

func TestValidateRejectsBadEnums(t *testing.T) {
	s := SeedStrategies(time.Now())[0]
	s.Risk = "Extreme"
	assert.ErrorIs(t, s.Validate(), ErrInvalidStrategy)

	s = SeedStrategies(time.Now())[0]
	s.Trades[0].Type = "HOLD"
	assert.ErrorIs(t, s.Validate(), ErrInvalidStrategy)
}

func TestCloneCopiesPnL(t *testing.T) {
	pnl := 10.0
	s := &Strategy{Trades: []Trade{{Type: TradeBuy, PnL: &pnl}}}
	cp := s.Clone()
	*cp.Trades[0].PnL = 99
	assert.Equal(t, 10.0, pnl)
}

func TestParseIDs(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	got := ParseIDs([]string{a.Hex(), "not-an-id", b.Hex(), a.Hex(), ""})
	assert.Equal(t, []primitive.ObjectID{a, b}, got)

	_, ok := ParseID("zzz")
	assert.False(t, ok)
}
