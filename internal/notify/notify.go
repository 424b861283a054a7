package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookstore-service/bookstore/pkg/circuit_breaker"
	"github.com/bookstore-service/bookstore/pkg/kafka"
)

type EventKind string

const (
	EventRequestCreated  EventKind = "request_created"
	EventRequestApproved EventKind = "request_approved"
	EventRequestRejected EventKind = "request_rejected"
	EventBookReturned    EventKind = "book_returned"
)

type Event struct {
	Kind     EventKind `json:"kind"`
	UserID   uuid.UUID `json:"userId"`
	BookID   uuid.UUID `json:"bookId"`
	EntityID uuid.UUID `json:"entityId"`
	At       time.Time `json:"at"`
}

// Sink delivers events best-effort. Implementations must never block the
// borrowing transaction or surface delivery errors to its caller.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

const (
	publishAttempts = 5
	publishBackoff  = 2 * time.Second
)

type Publisher struct {
	producer sarama.SyncProducer
	cb       circuit_breaker.CircuitBreaker
	topic    string
	log      *zap.Logger
}

func NewPublisher(producer sarama.SyncProducer, log *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		cb:       circuit_breaker.New(20, 30*time.Second, 0.5, 3),
		topic:    kafka.NotificationsTopic,
		log:      log.Named("notify"),
	}
}

// Publish is fire-and-forget: delivery runs on its own goroutine with bounded
// retry, so a broker outage never rolls back the transition that emitted the
// event.
func (p *Publisher) Publish(_ context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("marshal event", zap.Error(err))
		return
	}

	go func() {
		msg := &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(event.Kind),
			Value: sarama.ByteEncoder(data),
		}
		for i := 0; i < publishAttempts; i++ {
			err := p.cb.Call(func() error {
				_, _, err := p.producer.SendMessage(msg)
				return err
			})
			if err == nil {
				return
			}
			p.log.Warn("publish event",
				zap.String("kind", string(event.Kind)),
				zap.Int("attempt", i+1),
				zap.Error(err))
			time.Sleep(publishBackoff)
		}
		p.log.Error("event dropped after retries", zap.String("kind", string(event.Kind)))
	}()
}
