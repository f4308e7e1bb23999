// Package events streams audit entries to Kafka for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"medscan/internal/model"
)

const (
	writeTimeout = 5 * time.Second
	// QueueSize bounds the entries waiting for the broker.
	QueueSize = 256
)

var (
	// ErrQueueFull is returned when the broker cannot keep up and an entry is dropped.
	ErrQueueFull = errors.New("audit event queue full")
	// ErrClosed is returned by PublishAudit after Close.
	ErrClosed = errors.New("audit event publisher closed")
)

// MessageWriter is the subset of *kafka.Writer used by the publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuditEvent is the JSON payload published for each audit entry.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    model.AuditAction `json:"action"`
	Details   string            `json:"details"`
}

// KafkaPublisher writes audit entries to a topic, keyed by action. Entries are
// queued and written by a background goroutine; PublishAudit never waits on
// the broker.
type KafkaPublisher struct {
	writer MessageWriter
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan kafka.Message
	done   chan struct{}
	once   sync.Once
}

// NewKafkaPublisher returns nil when no brokers are configured.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	if len(brokers) == 0 {
		return nil
	}
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: writeTimeout,
		BatchTimeout: 10 * time.Millisecond,
	}, logger)
}

// NewPublisherWithWriter wraps an existing writer and starts the drain loop.
func NewPublisherWithWriter(w MessageWriter, logger zerolog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		writer: w,
		logger: logger.With().Str("component", "audit_events").Logger(),
		queue:  make(chan kafka.Message, QueueSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.logger.Warn().Err(err).Str("action", string(msg.Key)).Msg("write audit event failed")
		}
		cancel()
	}
}

// PublishAudit queues one entry.
func (p *KafkaPublisher) PublishAudit(ctx context.Context, entry model.AuditLogEntry) error {
	payload, err := json.Marshal(AuditEvent{
		Timestamp: entry.Timestamp.UTC(),
		Action:    entry.Action,
		Details:   entry.Details,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- kafka.Message{Key: []byte(entry.Action), Value: payload}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close flushes queued entries and closes the writer.
func (p *KafkaPublisher) Close() error {
	var err error
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		<-p.done
		err = p.writer.Close()
	})
	return err
}
