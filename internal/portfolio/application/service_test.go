package application

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/portfolioanalytics/internal/portfolio/domain"
	"github.com/wyfcoding/portfolioanalytics/internal/portfolio/infrastructure/persistence/memory"
	"github.com/wyfcoding/portfolioanalytics/pkg/metrics"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []domain.PortfolioEvent
}

func (c *capturePublisher) PublishPortfolioEvent(_ context.Context, e domain.PortfolioEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *capturePublisher) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

func newTestService(t *testing.T) (*PortfolioService, *memory.PortfolioRepository, *capturePublisher, *metrics.Metrics) {
	t.Helper()
	repo := memory.NewPortfolioRepository()
	pub := &capturePublisher{}
	m := metrics.New("portfolio_test")
	sim := domain.NewSimulator(domain.NewRandomWalk(rand.New(rand.NewSource(1))), nil)
	svc := NewPortfolioService(repo, pub, sim, Config{
		DemoUserID:   "demo-user",
		StoreTimeout: time.Second,
	}, m)
	return svc, repo, pub, m
}

func TestGetPortfolioSeedsOnce(t *testing.T) {
	svc, repo, pub, m := newTestService(t)
	ctx := context.Background()

	first, err := svc.GetPortfolio(ctx)
	require.NoError(t, err)
	assert.Equal(t, "demo-user", first.UserID)
	assert.Len(t, first.Performance.Returns, domain.DefaultSeedDays)

	second, err := svc.GetPortfolio(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TotalValue, second.TotalValue)

	svc.WaitEvents()
	assert.Equal(t, 1, repo.Count())
	assert.Equal(t, []string{domain.PortfolioSeededEventType}, pub.types())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeedsTotal.WithLabelValues("portfolio")))
}

func TestConcurrentFirstReadsCreateOnePortfolio(t *testing.T) {
	svc, repo, pub, _ := newTestService(t)
	ctx := context.Background()

	const n = 50
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := svc.GetPortfolio(ctx)
			if assert.NoError(t, err) {
				ids[i] = p.ID.Hex()
			}
		}(i)
	}
	wg.Wait()
	svc.WaitEvents()

	assert.Equal(t, 1, repo.Count())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Len(t, pub.types(), 1)
}

func TestGetPerformanceDoesNotSeed(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetPerformance(ctx)
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)
	assert.Equal(t, 0, repo.Count())

	p, err := svc.GetPortfolio(ctx)
	require.NoError(t, err)
	perf, err := svc.GetPerformance(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.Performance, *perf)
}

func TestReplacePortfolio(t *testing.T) {
	svc, _, pub, _ := newTestService(t)
	ctx := context.Background()

	body := &domain.Portfolio{
		UserID:      "intruder",
		TotalValue:  5000,
		CashBalance: 100,
		Positions:   []domain.Position{{Symbol: "AAPL", Quantity: 1, AveragePrice: 150, CurrentPrice: 175}},
	}
	_, err := svc.ReplacePortfolio(ctx, body)
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)

	orig, err := svc.GetPortfolio(ctx)
	require.NoError(t, err)

	updated, err := svc.ReplacePortfolio(ctx, body)
	require.NoError(t, err)
	assert.Equal(t, orig.ID, updated.ID)
	assert.Equal(t, "demo-user", updated.UserID)
	assert.Equal(t, 5000.0, updated.TotalValue)
	assert.Equal(t, body.Positions, updated.Positions)
	assert.Equal(t, "intruder", body.UserID)

	svc.WaitEvents()
	assert.Equal(t, []string{domain.PortfolioSeededEventType, domain.PortfolioReplacedEventType}, pub.types())
}

func TestReplacePortfolioRejectsInvalid(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.ReplacePortfolio(context.Background(), &domain.Portfolio{Positions: []domain.Position{{Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidPortfolio)
}

type blockingPublisher struct {
	release chan struct{}
	capturePublisher
}

func (b *blockingPublisher) PublishPortfolioEvent(ctx context.Context, e domain.PortfolioEvent) error {
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return b.capturePublisher.PublishPortfolioEvent(ctx, e)
}

func TestSeedDoesNotWaitForEventPublish(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	svc := NewPortfolioService(memory.NewPortfolioRepository(), pub, nil, Config{
		DemoUserID:   "demo-user",
		SeedDays:     10,
		StoreTimeout: time.Second,
	}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.GetPortfolio(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("GetPortfolio blocked on the event publisher")
	}
	assert.Empty(t, pub.types())

	close(pub.release)
	svc.WaitEvents()
	assert.Equal(t, []string{domain.PortfolioSeededEventType}, pub.types())
}

// lookupIgnoresContext lets the first read through so the seed itself sees the caller's context.
type lookupIgnoresContext struct {
	*memory.PortfolioRepository
}

func (r lookupIgnoresContext) FindByUser(_ context.Context, userID string) (*domain.Portfolio, error) {
	return r.PortfolioRepository.FindByUser(context.Background(), userID)
}

func TestSeedSurvivesCallerCancellation(t *testing.T) {
	repo := memory.NewPortfolioRepository()
	svc := NewPortfolioService(lookupIgnoresContext{repo}, nil, nil, Config{
		DemoUserID:   "demo-user",
		SeedDays:     10,
		StoreTimeout: time.Second,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, created, err := svc.GetOrSeed(ctx, "demo-user")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "demo-user", p.UserID)
	assert.Equal(t, 1, repo.Count())
}
