// Package cache 策略读缓存：Redis 旁路缓存包装底层仓储
package cache

import (
	"context"
	"time"

	"github.com/wyfcoding/portfolioanalytics/internal/strategy/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/logger"
	"github.com/wyfcoding/portfolioanalytics/pkg/metrics"
)

const (
	keyPrefix = "strategy:"
	listKey   = "strategy:list"
	cacheName = "strategy"
)

// JSONCache 缓存读写接口，pkg/cache.RedisCache 实现之
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type cachedStrategyRepository struct {
	store   domain.StrategyRepository
	cache   JSONCache
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewCachedStrategyRepository 包装底层仓储；缓存错误只记录日志，读写回落到底层存储
func NewCachedStrategyRepository(store domain.StrategyRepository, cache JSONCache, ttl time.Duration, m *metrics.Metrics) domain.StrategyRepository {
	return &cachedStrategyRepository{store: store, cache: cache, ttl: ttl, metrics: m}
}

func (r *cachedStrategyRepository) List(ctx context.Context) ([]*domain.Strategy, error) {
	var cached []*domain.Strategy
	if hit := r.get(ctx, listKey, &cached); hit {
		return cached, nil
	}

	list, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	// 空列表不缓存，保证种子写入后立即可见
	if len(list) > 0 {
		r.set(ctx, listKey, list)
	}
	return list, nil
}

func (r *cachedStrategyRepository) FindByID(ctx context.Context, id string) (*domain.Strategy, error) {
	if _, ok := domain.ParseID(id); !ok {
		return nil, domain.ErrStrategyNotFound
	}

	var cached domain.Strategy
	if hit := r.get(ctx, keyPrefix+id, &cached); hit {
		return &cached, nil
	}

	s, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.set(ctx, keyPrefix+id, s)
	return s, nil
}

func (r *cachedStrategyRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Strategy, error) {
	return r.store.FindByIDs(ctx, ids)
}

func (r *cachedStrategyRepository) CreateIfAbsent(ctx context.Context, s *domain.Strategy) (*domain.Strategy, bool, error) {
	stored, created, err := r.store.CreateIfAbsent(ctx, s)
	if err != nil {
		return nil, false, err
	}
	if created {
		if err := r.cache.Delete(ctx, listKey); err != nil {
			logger.Warn(ctx, "Failed to invalidate strategy list cache", "error", err)
		}
	}
	return stored, created, nil
}

func (r *cachedStrategyRepository) get(ctx context.Context, key string, dest interface{}) bool {
	hit, err := r.cache.GetJSON(ctx, key, dest)
	if err != nil {
		logger.Warn(ctx, "Strategy cache read failed", "key", key, "error", err)
		hit = false
	}
	r.metrics.RecordCacheLookup(cacheName, hit)
	return hit
}

func (r *cachedStrategyRepository) set(ctx context.Context, key string, value interface{}) {
	if err := r.cache.SetJSON(ctx, key, value, r.ttl); err != nil {
		logger.Warn(ctx, "Strategy cache write failed", "key", key, "error", err)
	}
}
