// Package messaging 策略事件发布
package messaging

import (
	"context"

	"github.com/wyfcoding/portfolioanalytics/internal/strategy/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/metrics"
)

// Producer 消息生产者
type Producer interface {
	SendMessage(ctx context.Context, topic, key string, value interface{}, headers map[string]string) error
}

// KafkaEventPublisher 以策略名为分区键发布
type KafkaEventPublisher struct {
	producer Producer
	topic    string
	metrics  *metrics.Metrics
}

func NewKafkaEventPublisher(producer Producer, topic string, m *metrics.Metrics) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic, metrics: m}
}

func (p *KafkaEventPublisher) PublishStrategyEvent(ctx context.Context, event domain.StrategyEvent) error {
	err := p.producer.SendMessage(ctx, p.topic, event.Name, event, map[string]string{
		"event_type": event.Type,
	})
	p.metrics.RecordEvent(event.Type, err)
	return err
}
