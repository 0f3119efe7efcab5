// Package notify delivers post-commit notifications to registered senders.
// Delivery is fire-and-forget: failures are logged and counted, never returned
// to the operation that produced the message.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go-inventory-ledger/internal/metrics"
)

type Topic string

const (
	TopicStockUpdate   Topic = "stock_update"
	TopicAlert         Topic = "alert"
	TopicAlertResolved Topic = "alert_resolved"
	TopicDigest        Topic = "digest"
)

const defaultTimeout = 10 * time.Second

// Message is one notification. Subject and Body are plain text; Data is the
// structured payload for machine consumers such as the websocket feed.
type Message struct {
	Topic   Topic
	Subject string
	Body    string
	Data    any
}

// Sender is a single delivery backend.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
}

// Dispatcher routes messages to the senders registered for their topic.
type Dispatcher struct {
	routes  map[Topic][]Sender
	logger  *slog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	mu      sync.RWMutex
	wg      sync.WaitGroup
}

func NewDispatcher(logger *slog.Logger, m *metrics.Metrics, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		routes:  make(map[Topic][]Sender),
		logger:  logger,
		metrics: m,
		timeout: timeout,
	}
}

// Register subscribes s to the given topics.
func (d *Dispatcher) Register(s Sender, topics ...Topic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range topics {
		d.routes[t] = append(d.routes[t], s)
	}
}

// Dispatch starts delivery of every message and returns immediately.
func (d *Dispatcher) Dispatch(msgs ...*Message) {
	if d == nil {
		return
	}
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		d.mu.RLock()
		senders := d.routes[msg.Topic]
		d.mu.RUnlock()

		for _, s := range senders {
			d.wg.Add(1)
			go d.deliver(s, msg)
		}
	}
}

// Wait blocks until all in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

func (d *Dispatcher) deliver(s Sender, msg *Message) {
	defer d.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := s.Send(ctx, msg)
	d.metrics.NotificationDelivered(s.Name(), err)
	if err != nil {
		d.logger.Warn("notification send failed",
			slog.String("sender", s.Name()),
			slog.String("topic", string(msg.Topic)),
			slog.String("error", err.Error()),
		)
		return
	}
	d.logger.Debug("notification sent",
		slog.String("sender", s.Name()),
		slog.String("topic", string(msg.Topic)),
	)
}
