package domain

import (
	"context"
	"time"
)

const (
	PortfolioSeededEventType   = "portfolio.seeded"
	PortfolioReplacedEventType = "portfolio.replaced"
)

// PortfolioEvent 组合变更事件
type PortfolioEvent struct {
	Type        string    `json:"type"`
	PortfolioID string    `json:"portfolio_id"`
	UserID      string    `json:"user_id"`
	TotalValue  float64   `json:"total_value"`
	CashBalance float64   `json:"cash_balance"`
	Positions   int       `json:"positions"`
	MarketValue float64   `json:"positions_market_value"`
	Unrealized  float64   `json:"unrealized_pnl"`
	OccurredOn  time.Time `json:"occurred_on"`
}

// NewPortfolioEvent 由组合快照构造事件
func NewPortfolioEvent(eventType string, p *Portfolio, now time.Time) PortfolioEvent {
	return PortfolioEvent{
		Type:        eventType,
		PortfolioID: p.ID.Hex(),
		UserID:      p.UserID,
		TotalValue:  p.TotalValue,
		CashBalance: p.CashBalance,
		Positions:   len(p.Positions),
		MarketValue: p.PositionsValue().Round(2).InexactFloat64(),
		Unrealized:  p.UnrealizedPnL().Round(2).InexactFloat64(),
		OccurredOn:  now,
	}
}

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishPortfolioEvent 发布组合事件
	PublishPortfolioEvent(ctx context.Context, event PortfolioEvent) error
}
