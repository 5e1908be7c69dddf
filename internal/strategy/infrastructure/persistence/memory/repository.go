// Package memory 进程内策略仓储
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/wyfcoding/portfolioanalytics/internal/strategy/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StrategyRepository 以 ID 存储、以 name 去重
type StrategyRepository struct {
	mu     sync.RWMutex
	byID   map[primitive.ObjectID]*domain.Strategy
	byName map[string]primitive.ObjectID
	order  []primitive.ObjectID
	now    func() time.Time
}

// NewStrategyRepository 创建内存仓储
func NewStrategyRepository() *StrategyRepository {
	return &StrategyRepository{
		byID:   make(map[primitive.ObjectID]*domain.Strategy),
		byName: make(map[string]primitive.ObjectID),
		now:    time.Now,
	}
}

func (r *StrategyRepository) List(ctx context.Context) ([]*domain.Strategy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Strategy, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out, nil
}

func (r *StrategyRepository) FindByID(ctx context.Context, id string) (*domain.Strategy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	oid, ok := domain.ParseID(id)
	if !ok {
		return nil, domain.ErrStrategyNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[oid]
	if !ok {
		return nil, domain.ErrStrategyNotFound
	}
	return s.Clone(), nil
}

func (r *StrategyRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Strategy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Strategy, 0, len(ids))
	for _, oid := range domain.ParseIDs(ids) {
		if s, ok := r.byID[oid]; ok {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (r *StrategyRepository) CreateIfAbsent(ctx context.Context, s *domain.Strategy) (*domain.Strategy, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[s.Name]; ok {
		return r.byID[id].Clone(), false, nil
	}
	stored := s.Clone()
	stored.PrepareInsert(r.now())
	r.byID[stored.ID] = stored
	r.byName[stored.Name] = stored.ID
	r.order = append(r.order, stored.ID)
	return stored.Clone(), true, nil
}
