package activity

import (
	"context"
	"sync"
	"time"

	kafkax "github.com/ariefcatur/lexi-storefront/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Event is what request handlers report. Payload is any JSON-encodable value.
type Event struct {
	Type      string
	BrowserID string
	UserID    int64
	Payload   any
}

// Publisher is fire-and-forget: it never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// NewEnvelope wraps ev for the wire.
func NewEnvelope(producer string, ev Event) Envelope {
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    ev.Type,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     producer,
		BrowserID:    ev.BrowserID,
		UserID:       ev.UserID,
	}
	if ev.Payload != nil {
		env.Payload = kafkax.MustMarshal(ev.Payload)
	}
	return env
}

type KafkaPublisher struct {
	Producer *kafkax.Producer
	Service  string
}

func (p *KafkaPublisher) Publish(_ context.Context, ev Event) {
	env := NewEnvelope(p.Service, ev)
	p.Producer.Publish(PartitionKey(ev.BrowserID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(ev.Type)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Memory keeps published events; used in tests and local runs.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Publish(_ context.Context, ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
