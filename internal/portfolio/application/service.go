package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wyfcoding/portfolioanalytics/internal/portfolio/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/logger"
	"github.com/wyfcoding/portfolioanalytics/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// eventTimeout bounds a single background publish.
const eventTimeout = 5 * time.Second

// Config portfolio service settings
type Config struct {
	DemoUserID   string
	StartValue   float64
	SeedDays     int
	StoreTimeout time.Duration
}

// PortfolioService serves the demo user's portfolio, seeding it on first read.
type PortfolioService struct {
	repo      domain.PortfolioRepository
	publisher domain.EventPublisher
	simulator *domain.Simulator
	metrics   *metrics.Metrics
	cfg       Config
	seeds     singleflight.Group
	events    sync.WaitGroup
	now       func() time.Time
}

func NewPortfolioService(repo domain.PortfolioRepository, publisher domain.EventPublisher, simulator *domain.Simulator, cfg Config, m *metrics.Metrics) *PortfolioService {
	if cfg.StartValue <= 0 {
		cfg.StartValue = domain.DefaultStartValue
	}
	if cfg.SeedDays < 2 {
		cfg.SeedDays = domain.DefaultSeedDays
	}
	if simulator == nil {
		simulator = domain.NewSimulator(nil, nil)
	}
	return &PortfolioService{
		repo:      repo,
		publisher: publisher,
		simulator: simulator,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

// DemoUserID returns the single user this deployment serves.
func (s *PortfolioService) DemoUserID() string {
	return s.cfg.DemoUserID
}

func (s *PortfolioService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// GetPortfolio returns the demo portfolio, creating it if absent.
func (s *PortfolioService) GetPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	p, _, err := s.GetOrSeed(ctx, s.cfg.DemoUserID)
	return p, err
}

// GetOrSeed reads the user's portfolio or persists a freshly generated one.
// Concurrent first reads in this process share one store round trip; across
// processes the store's unique userId index keeps a single record.
func (s *PortfolioService) GetOrSeed(ctx context.Context, userID string) (*domain.Portfolio, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, domain.ErrPortfolioNotFound) {
		return nil, false, fmt.Errorf("get portfolio: %w", err)
	}

	type seeded struct {
		p       *domain.Portfolio
		created bool
	}
	v, err, _ := s.seeds.Do(userID, func() (interface{}, error) {
		// shared by every waiting caller, so detached from the first caller's cancellation
		ctx, cancel := s.withTimeout(context.WithoutCancel(ctx))
		defer cancel()

		fresh, err := s.simulator.Generate(userID, s.cfg.StartValue, s.cfg.SeedDays)
		if err != nil {
			return nil, err
		}
		stored, created, err := s.repo.CreateIfAbsent(ctx, fresh)
		if err != nil {
			return nil, err
		}
		if created {
			s.metrics.RecordSeed("portfolio")
			logger.Info(ctx, "Seeded portfolio", "user_id", userID, "portfolio_id", stored.ID.Hex(), "total_value", stored.TotalValue)
			s.publish(ctx, domain.PortfolioSeededEventType, stored)
		}
		return seeded{p: stored, created: created}, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("seed portfolio: %w", err)
	}

	// callers sharing one flight each get their own copy
	res := v.(seeded)
	return res.p.Clone(), res.created, nil
}

// ReplacePortfolio overwrites the demo portfolio with next; absent portfolios are not created.
func (s *PortfolioService) ReplacePortfolio(ctx context.Context, next *domain.Portfolio) (*domain.Portfolio, error) {
	if err := next.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	next = next.Clone()
	next.UserID = s.cfg.DemoUserID
	updated, err := s.repo.Replace(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("replace portfolio: %w", err)
	}

	logger.Info(ctx, "Replaced portfolio", "user_id", updated.UserID, "positions", len(updated.Positions))
	s.publish(ctx, domain.PortfolioReplacedEventType, updated)
	return updated, nil
}

// GetPerformance returns the stored performance block without seeding.
func (s *PortfolioService) GetPerformance(ctx context.Context) (*domain.Performance, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := s.repo.FindByUser(ctx, s.cfg.DemoUserID)
	if err != nil {
		return nil, fmt.Errorf("get performance: %w", err)
	}
	return &p.Performance, nil
}

// publish sends the event in the background; the request only waits on the store.
func (s *PortfolioService) publish(ctx context.Context, eventType string, p *domain.Portfolio) {
	if s.publisher == nil {
		return
	}
	event := domain.NewPortfolioEvent(eventType, p, s.now())
	ctx = context.WithoutCancel(ctx)

	s.events.Add(1)
	go func() {
		defer s.events.Done()
		ctx, cancel := context.WithTimeout(ctx, eventTimeout)
		defer cancel()
		if err := s.publisher.PublishPortfolioEvent(ctx, event); err != nil {
			logger.Warn(ctx, "Failed to publish portfolio event", "event_type", eventType, "error", err)
		}
	}()
}

// WaitEvents blocks until background event publishes have finished.
func (s *PortfolioService) WaitEvents() {
	s.events.Wait()
}
