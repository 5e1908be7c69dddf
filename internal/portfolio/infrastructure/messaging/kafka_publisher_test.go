package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/portfolioanalytics/internal/portfolio/domain"
	"github.com/wyfcoding/portfolioanalytics/pkg/metrics"
)

type recordingProducer struct {
	topic   string
	key     string
	value   interface{}
	headers map[string]string
	err     error
}

func (r *recordingProducer) SendMessage(_ context.Context, topic, key string, value interface{}, headers map[string]string) error {
	r.topic, r.key, r.value, r.headers = topic, key, value, headers
	return r.err
}

func TestKafkaEventPublisher(t *testing.T) {
	prod := &recordingProducer{}
	m := metrics.New("messaging")
	pub := NewKafkaEventPublisher(prod, "portfolio-analytics.events", m)

	event := domain.PortfolioEvent{Type: domain.PortfolioSeededEventType, UserID: "demo-user", OccurredOn: time.Now()}
	require.NoError(t, pub.PublishPortfolioEvent(context.Background(), event))

	assert.Equal(t, "portfolio-analytics.events", prod.topic)
	assert.Equal(t, "demo-user", prod.key)
	assert.Equal(t, event, prod.value)
	assert.Equal(t, domain.PortfolioSeededEventType, prod.headers["event_type"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublishedTotal.WithLabelValues(domain.PortfolioSeededEventType, "ok")))

	prod.err = errors.New("broker down")
	assert.Error(t, pub.PublishPortfolioEvent(context.Background(), event))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublishedTotal.WithLabelValues(domain.PortfolioSeededEventType, "error")))
}

func TestNoopEventPublisher(t *testing.T) {
	assert.NoError(t, NoopEventPublisher{}.PublishPortfolioEvent(context.Background(), domain.PortfolioEvent{}))
}
