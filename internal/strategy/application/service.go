package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wyfcoding/portfolioanalytics/internal/strategy/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/logger"
	"github.com/wyfcoding/portfolioanalytics/pkg/metrics"
	"github.com/wyfcoding/portfolioanalytics/pkg/utils"
	"golang.org/x/sync/singleflight"
)

// eventTimeout bounds a single background publish.
const eventTimeout = 5 * time.Second

// StrategyService reads strategies, seeding the demo set when the collection is empty.
type StrategyService struct {
	repo      domain.StrategyRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	timeout   time.Duration
	seeds     singleflight.Group
	events    sync.WaitGroup
	fixtures  func(time.Time) []*domain.Strategy
	now       func() time.Time
}

func NewStrategyService(repo domain.StrategyRepository, publisher domain.EventPublisher, timeout time.Duration, m *metrics.Metrics) *StrategyService {
	return &StrategyService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		timeout:   timeout,
		fixtures:  domain.SeedStrategies,
		now:       time.Now,
	}
}

func (s *StrategyService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ListStrategies returns every strategy; an empty store is seeded first.
func (s *StrategyService) ListStrategies(ctx context.Context) ([]*domain.Strategy, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	if len(list) > 0 {
		return list, nil
	}

	if _, err, _ := s.seeds.Do("strategies", func() (interface{}, error) {
		seedCtx, cancel := s.withTimeout(context.WithoutCancel(ctx))
		defer cancel()
		return nil, s.seed(seedCtx)
	}); err != nil {
		return nil, fmt.Errorf("seed strategies: %w", err)
	}

	list, err = s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	return list, nil
}

func (s *StrategyService) seed(ctx context.Context) error {
	for _, fixture := range s.fixtures(s.now()) {
		if err := fixture.Validate(); err != nil {
			return err
		}
		stored, created, err := s.repo.CreateIfAbsent(ctx, fixture)
		if err != nil {
			return err
		}
		if !created {
			continue
		}
		s.metrics.RecordSeed("strategy")
		logger.Info(ctx, "Seeded strategy", "strategy_id", stored.ID.Hex(), "name", stored.Name)
		s.publish(ctx, domain.StrategyEvent{
			Type:       domain.StrategySeededEventType,
			StrategyID: stored.ID.Hex(),
			Name:       stored.Name,
			Risk:       stored.Risk,
			OccurredOn: s.now(),
		})
	}
	return nil
}

// publish sends the event in the background and never blocks the caller.
func (s *StrategyService) publish(ctx context.Context, event domain.StrategyEvent) {
	if s.publisher == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	s.events.Add(1)
	go func() {
		defer s.events.Done()
		ctx, cancel := context.WithTimeout(ctx, eventTimeout)
		defer cancel()
		if err := s.publisher.PublishStrategyEvent(ctx, event); err != nil {
			logger.Warn(ctx, "Failed to publish strategy event", "name", event.Name, "error", err)
		}
	}()
}

// WaitEvents blocks until background event publishes have finished.
func (s *StrategyService) WaitEvents() {
	s.events.Wait()
}

// GetStrategy returns one strategy or domain.ErrStrategyNotFound.
func (s *StrategyService) GetStrategy(ctx context.Context, id string) (*domain.Strategy, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get strategy %s: %w", id, err)
	}
	return st, nil
}

// CompareStrategies returns the strategies that exist among ids. Unknown or
// malformed ids are dropped; order is not guaranteed.
func (s *StrategyService) CompareStrategies(ctx context.Context, ids []string) ([]*domain.Strategy, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ids = utils.Dedupe(ids)
	if len(ids) == 0 {
		return []*domain.Strategy{}, nil
	}
	list, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("compare strategies: %w", err)
	}
	return list, nil
}
