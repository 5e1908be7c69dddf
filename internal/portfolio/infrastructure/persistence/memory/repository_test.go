package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/portfolioanalytics/internal/portfolio/domain"
)

func TestCreateIfAbsentOnce(t *testing.T) {
	repo := NewPortfolioRepository()
	ctx := context.Background()

	first, created, err := repo.CreateIfAbsent(ctx, &domain.Portfolio{UserID: "demo-user", TotalValue: 1})
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, first.ID.IsZero())

	second, created, err := repo.CreateIfAbsent(ctx, &domain.Portfolio{UserID: "demo-user", TotalValue: 2})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1.0, second.TotalValue)
}

func TestConcurrentCreateIfAbsent(t *testing.T) {
	repo := NewPortfolioRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := repo.CreateIfAbsent(ctx, &domain.Portfolio{UserID: "demo-user"})
			assert.NoError(t, err)
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, createdCount)
	assert.Equal(t, 1, repo.Count())
}

func TestReplace(t *testing.T) {
	repo := NewPortfolioRepository()
	ctx := context.Background()

	_, err := repo.Replace(ctx, &domain.Portfolio{UserID: "demo-user"})
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)

	orig, _, err := repo.CreateIfAbsent(ctx, &domain.Portfolio{UserID: "demo-user", TotalValue: 1})
	require.NoError(t, err)

	next, err := repo.Replace(ctx, &domain.Portfolio{UserID: "demo-user", TotalValue: 9})
	require.NoError(t, err)
	assert.Equal(t, orig.ID, next.ID)
	assert.Equal(t, 9.0, next.TotalValue)

	got, err := repo.FindByUser(ctx, "demo-user")
	require.NoError(t, err)
	assert.Equal(t, 9.0, got.TotalValue)
}

func TestFindReturnsCopy(t *testing.T) {
	repo := NewPortfolioRepository()
	ctx := context.Background()
	_, _, err := repo.CreateIfAbsent(ctx, &domain.Portfolio{UserID: "u", Positions: domain.SeedPositions()})
	require.NoError(t, err)

	got, err := repo.FindByUser(ctx, "u")
	require.NoError(t, err)
	got.Positions[0].Quantity = 0

	again, err := repo.FindByUser(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 100.0, again.Positions[0].Quantity)
}
