package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-kpis/pkg/metrics"
	"github.com/Temutjin2k/taxi-kpis/pkg/rabbit"
)

const (
	KPIExchange = "kpi_topic"

	publishAttempts = 3
	publishBackoff  = time.Second
)

// Publisher is the part of the RabbitMQ client the broker uses.
type Publisher interface {
	EnsureConnection(ctx context.Context) error
	DeclareTopicExchange(name string) error
	Publish(ctx context.Context, exchange, key string, msg amqp091.Publishing) error
}

var _ Publisher = (*rabbit.RabbitMQ)(nil)

type KPIBroker struct {
	client   Publisher
	exchange string

	l logger.Logger
}

func NewKPIBroker(client Publisher, exchange string, log logger.Logger) (*KPIBroker, error) {
	if exchange == "" {
		exchange = KPIExchange
	}

	if err := client.DeclareTopicExchange(exchange); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &KPIBroker{
		client:   client,
		exchange: exchange,
		l:        log,
	}, nil
}

// PublishMetricsComputed publishes to the kpi exchange with key
// 'metrics.computed.{month}'.
func (b *KPIBroker) PublishMetricsComputed(ctx context.Context, msg models.MetricsComputedMessage) (err error) {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_metrics_computed")
	defer func() { metrics.RecordRabbitMQPublish(b.exchange, err) }()

	if err := b.client.EnsureConnection(ctx); err != nil {
		return wrap.Error(ctx, fmt.Errorf("ensure connection: %w", err))
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to marshal message: %w", err))
	}

	key := RoutingKey(msg.Month)

	err = retry(ctx, publishAttempts, publishBackoff, func() error {
		return b.client.Publish(ctx, b.exchange, key, amqp091.Publishing{
			ContentType:   "application/json",
			CorrelationId: msg.RunID,
			MessageId:     msg.RunID,
			Body:          body,
			Timestamp:     msg.ComputedAt,
		})
	})
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to publish with context: %w", err))
	}

	b.l.Debug(ctx, "metrics computed event published", "exchange", b.exchange, "key", key)

	return nil
}

func RoutingKey(month string) string {
	return fmt.Sprintf("metrics.computed.%s", month)
}
