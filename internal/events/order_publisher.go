// Package events publishes normalized exchange order updates to Kafka.
package events

import (
	"context"
	"sync"
	"time"

	"tentacles/internal/adapters/exchanges"
	"tentacles/internal/adapters/kafka"
	"tentacles/internal/metrics"
	"tentacles/pkg/errors"
	"tentacles/pkg/logger"
)

const (
	defaultQueueSize      = 1024
	defaultPublishTimeout = 5 * time.Second
)

// ErrQueueFull is counted when an update is dropped because the queue is full.
var ErrQueueFull = errors.New("order update queue full")

// Publisher is the part of the Kafka producer the order publisher needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, event interface{}) error
}

var _ Publisher = (*kafka.Producer)(nil)

// OrderEvent is the JSON payload of an order update.
type OrderEvent struct {
	Exchange      string    `json:"exchange"`
	Market        string    `json:"market"`
	OrderID       string    `json:"order_id"`
	ClientOrderID string    `json:"client_order_id,omitempty"`
	Symbol        string    `json:"symbol"`
	Side          string    `json:"side,omitempty"`
	Type          string    `json:"type,omitempty"`
	Status        string    `json:"status"`
	Amount        string    `json:"amount"`
	Price         string    `json:"price"`
	StopPrice     string    `json:"stop_price,omitempty"`
	Filled        string    `json:"filled"`
	ReduceOnly    bool      `json:"reduce_only"`
	TriggerAbove  bool      `json:"trigger_above"`
	OrderTime     time.Time `json:"order_time,omitempty"`
	PublishedAt   time.Time `json:"published_at"`
}

// OrderPublisherConfig configures an OrderPublisher.
type OrderPublisherConfig struct {
	Exchange string
	Market   exchanges.MarketType
	// Topic defaults to kafka.TopicOrderUpdates
	Topic string
	// QueueSize bounds the updates waiting to be written; extra updates are dropped
	QueueSize int
	// PublishTimeout bounds every single write
	PublishTimeout time.Duration
}

type orderMessage struct {
	key   string
	event OrderEvent
}

// OrderPublisher forwards every normalized order to the order updates topic.
// OnOrder only enqueues; a single worker writes to Kafka in order, so broker
// latency and failures stay off the exchange call path.
type OrderPublisher struct {
	publisher Publisher
	cfg       OrderPublisherConfig
	now       func() time.Time
	log       *logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan orderMessage
	done   chan struct{}
}

// NewOrderPublisher creates a publisher and starts its worker. Close stops it.
func NewOrderPublisher(publisher Publisher, cfg OrderPublisherConfig, log *logger.Logger) *OrderPublisher {
	if cfg.Topic == "" {
		cfg.Topic = kafka.TopicOrderUpdates
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	if log == nil {
		log = logger.Get()
	}
	p := &OrderPublisher{
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		log:       log.WithComponent("order_publisher"),
		queue:     make(chan orderMessage, cfg.QueueSize),
		done:      make(chan struct{}),
	}
	go p.run()
	return p
}

// OnOrder implements bybit.OrderObserver. It never blocks.
func (p *OrderPublisher) OnOrder(_ context.Context, order *exchanges.Order) {
	if order == nil {
		return
	}
	msg := orderMessage{key: p.key(order), event: p.newEvent(order)}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- msg:
	default:
		metrics.RecordKafkaMessage(p.cfg.Topic, ErrQueueFull)
		p.log.Warnw("Dropping order update, queue full",
			"order_id", order.ID,
			"symbol", order.Symbol,
		)
	}
}

// Close stops accepting updates and waits for the queued ones to be written,
// or for ctx to expire.
func (p *OrderPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(errors.ErrTimeout, "drain order updates")
	}
}

func (p *OrderPublisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		p.publish(msg)
	}
}

func (p *OrderPublisher) publish(msg orderMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.PublishTimeout)
	defer cancel()

	if err := p.publisher.Publish(ctx, p.cfg.Topic, msg.key, msg.event); err != nil {
		p.log.Warnw("Failed to publish order update",
			"order_id", msg.event.OrderID,
			"symbol", msg.event.Symbol,
			"error", err,
		)
	}
}

// key keeps all updates of one symbol on one partition.
func (p *OrderPublisher) key(order *exchanges.Order) string {
	return p.cfg.Exchange + ":" + order.Symbol
}

func (p *OrderPublisher) newEvent(order *exchanges.Order) OrderEvent {
	event := OrderEvent{
		Exchange:      p.cfg.Exchange,
		Market:        string(p.cfg.Market),
		OrderID:       order.ID,
		ClientOrderID: order.ClientOrderID,
		Symbol:        order.Symbol,
		Side:          string(order.Side),
		Type:          string(order.Type),
		Status:        string(order.Status),
		Amount:        order.Amount.String(),
		Price:         order.Price.String(),
		Filled:        order.Filled.String(),
		ReduceOnly:    order.ReduceOnly,
		TriggerAbove:  order.TriggerAbove,
		OrderTime:     order.Timestamp,
		PublishedAt:   p.now().UTC(),
	}
	if !order.StopPrice.IsZero() {
		event.StopPrice = order.StopPrice.String()
	}
	return event
}
