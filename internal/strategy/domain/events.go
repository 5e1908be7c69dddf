package domain

import (
	"context"
	"time"
)

const StrategySeededEventType = "strategy.seeded"

// StrategyEvent 策略事件
type StrategyEvent struct {
	Type       string    `json:"type"`
	StrategyID string    `json:"strategy_id"`
	Name       string    `json:"name"`
	Risk       Risk      `json:"risk"`
	OccurredOn time.Time `json:"occurred_on"`
}

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishStrategyEvent 发布策略事件
	PublishStrategyEvent(ctx context.Context, event StrategyEvent) error
}
