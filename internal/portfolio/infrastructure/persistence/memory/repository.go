// Package memory 进程内组合仓储，用于测试与 driver = "memory"
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/wyfcoding/portfolioanalytics/internal/portfolio/domain"
)

// PortfolioRepository 以 userId 为唯一键的内存仓储
type PortfolioRepository struct {
	mu    sync.RWMutex
	byUID map[string]*domain.Portfolio
	now   func() time.Time
}

// NewPortfolioRepository 创建内存仓储
func NewPortfolioRepository() *PortfolioRepository {
	return &PortfolioRepository{
		byUID: make(map[string]*domain.Portfolio),
		now:   time.Now,
	}
}

func (r *PortfolioRepository) FindByUser(ctx context.Context, userID string) (*domain.Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byUID[userID]
	if !ok {
		return nil, domain.ErrPortfolioNotFound
	}
	return p.Clone(), nil
}

func (r *PortfolioRepository) CreateIfAbsent(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byUID[p.UserID]; ok {
		return existing.Clone(), false, nil
	}
	stored := p.Clone()
	stored.PrepareInsert(r.now())
	r.byUID[p.UserID] = stored
	return stored.Clone(), true, nil
}

func (r *PortfolioRepository) Replace(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byUID[p.UserID]
	if !ok {
		return nil, domain.ErrPortfolioNotFound
	}
	next := current.ReplaceWith(p, r.now())
	r.byUID[p.UserID] = next
	return next.Clone(), nil
}

// Count 已存储的组合数
func (r *PortfolioRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUID)
}
