package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/portfolioanalytics/internal/strategy/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFindByIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewStrategyRepository()

	a, _, err := repo.CreateIfAbsent(ctx, &domain.Strategy{Name: "A", Risk: domain.RiskLow})
	require.NoError(t, err)
	b, _, err := repo.CreateIfAbsent(ctx, &domain.Strategy{Name: "B", Risk: domain.RiskMedium})
	require.NoError(t, err)
	missing := primitive.NewObjectID().Hex()

	got, err := repo.FindByIDs(ctx, []string{a.ID.Hex(), b.ID.Hex(), missing, "garbage"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	names := []string{got[0].Name, got[1].Name}
	assert.ElementsMatch(t, []string{"A", "B"}, names)
}

func TestFindByIDNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewStrategyRepository()

	_, err := repo.FindByID(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrStrategyNotFound)

	_, err = repo.FindByID(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrStrategyNotFound)
}

func TestCreateIfAbsentByName(t *testing.T) {
	ctx := context.Background()
	repo := NewStrategyRepository()
	seed := domain.SeedStrategies(time.Now())[0]

	first, created, err := repo.CreateIfAbsent(ctx, seed)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := repo.CreateIfAbsent(ctx, seed)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
