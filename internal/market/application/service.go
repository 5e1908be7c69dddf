package application

import (
	"context"
	"time"

	"github.com/wyfcoding/portfolioanalytics/internal/market/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/logger"
)

// MarketService builds the market news feed relative to the current time.
type MarketService struct {
	now func() time.Time
}

// NewMarketService now defaults to time.Now.
func NewMarketService(now func() time.Time) *MarketService {
	if now == nil {
		now = time.Now
	}
	return &MarketService{now: now}
}

// GetUpdates returns the feed stamped against the current time.
func (s *MarketService) GetUpdates(ctx context.Context) []domain.MarketUpdate {
	updates := domain.UpdatesAt(s.now())
	logger.Debug(ctx, "Built market updates", "count", len(updates))
	return updates
}
