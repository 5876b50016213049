package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/internal/observability/metrics"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const exchangeKind = "fanout"

// QueueManager publishes asset notifications to an AMQP exchange.
type QueueManager struct {
	cfg *config.NotifierConfig

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewQueueManager(cfg *config.NotifierConfig) (*QueueManager, error) {
	qm := &QueueManager{cfg: cfg}
	if err := qm.connect(); err != nil {
		return nil, err
	}

	return qm, nil
}

func (qm *QueueManager) connect() error {
	conn, err := amqp.Dial(qm.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to amqp broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open amqp channel: %w", err)
	}

	err = channel.ExchangeDeclare(qm.cfg.Exchange, exchangeKind, true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", qm.cfg.Exchange, err)
	}

	qm.conn = conn
	qm.channel = channel
	return nil
}

// NotifyAssetsPublished sends ev to the exchange, reconnecting once if the
// connection was dropped since the last message.
func (qm *QueueManager) NotifyAssetsPublished(ctx context.Context, ev *AssetsPublishedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	qm.mu.Lock()
	defer qm.mu.Unlock()

	if qm.conn == nil || qm.conn.IsClosed() {
		if err := qm.connect(); err != nil {
			metrics.RecordNotifierSendError()
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, qm.cfg.PublishTimeout)
	defer cancel()

	err = qm.channel.PublishWithContext(ctx, qm.cfg.Exchange, qm.cfg.RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.New().String(),
		Timestamp:    time.Now().UTC(),
		Type:         string(ev.EventType),
		Body:         body,
	})
	if err != nil {
		metrics.RecordNotifierSendError()
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Ctx(ctx).Debug().Str("exchange", qm.cfg.Exchange).Msg("assets published event sent")
	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")

	qm.mu.Lock()
	defer qm.mu.Unlock()

	if qm.conn != nil && !qm.conn.IsClosed() {
		if err := qm.conn.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close amqp connection")
		}
	}
}
