// Package messaging 组合事件发布（Kafka / 空实现）
package messaging

import (
	"context"

	"github.com/wyfcoding/portfolioanalytics/internal/portfolio/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/metrics"
)

// Producer 消息生产者
type Producer interface {
	SendMessage(ctx context.Context, topic, key string, value interface{}, headers map[string]string) error
}

// KafkaEventPublisher 以 userId 为分区键发布组合事件
type KafkaEventPublisher struct {
	producer Producer
	topic    string
	metrics  *metrics.Metrics
}

// NewKafkaEventPublisher 创建发布者
func NewKafkaEventPublisher(producer Producer, topic string, m *metrics.Metrics) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic, metrics: m}
}

// PublishPortfolioEvent 发布组合事件
func (p *KafkaEventPublisher) PublishPortfolioEvent(ctx context.Context, event domain.PortfolioEvent) error {
	err := p.producer.SendMessage(ctx, p.topic, event.UserID, event, map[string]string{
		"event_type": event.Type,
	})
	p.metrics.RecordEvent(event.Type, err)
	return err
}

// NoopEventPublisher Kafka 未启用时使用
type NoopEventPublisher struct{}

// PublishPortfolioEvent 丢弃事件
func (NoopEventPublisher) PublishPortfolioEvent(context.Context, domain.PortfolioEvent) error {
	return nil
}
