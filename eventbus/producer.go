// Package eventbus mirrors published notices to a Kafka topic so that
// services outside the relay can follow the order lifecycle.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"food-delivery-relay/events"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const EnvelopeVersion = 1

type Envelope struct {
	EventID      string          `json:"eventId"`
	EventType    string          `json:"eventType"`
	EventVersion int             `json:"eventVersion"`
	OccurredAt   time.Time       `json:"occurredAt"`
	Producer     string          `json:"producer"`
	Room         string          `json:"room,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

// NewEnvelope wraps n. The event type is the first wire name of the notice.
func NewEnvelope(n events.Notice, producer string, at time.Time) (Envelope, error) {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", n.Event, err)
	}
	return Envelope{
		EventID:      uuid.NewString(),
		EventType:    n.Event.String(),
		EventVersion: EnvelopeVersion,
		OccurredAt:   at.UTC(),
		Producer:     producer,
		Room:         n.Room,
		Payload:      payload,
	}, nil
}

// PartitionKey keeps every notice for one room on the same partition
func PartitionKey(n events.Notice) []byte {
	if n.Global() {
		return []byte(n.Event.String())
	}
	return []byte(n.Room)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes envelopes from a buffered inbox on its own goroutine.
// Mirror never blocks; a full inbox drops the notice.
type Producer struct {
	w       messageWriter
	service string
	inbox   chan kafka.Message
	stop    chan struct{}
	done    chan struct{}
}

func NewProducer(brokers []string, topic, service string, buf int) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}, service, buf)
}

func newProducer(w messageWriter, service string, buf int) *Producer {
	if buf <= 0 {
		buf = 1024
	}
	return &Producer{
		w:       w,
		service: service,
		inbox:   make(chan kafka.Message, buf),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start runs the writer loop until ctx is cancelled, then flushes what is
// left in the inbox and closes the writer.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				close(p.stop)
				p.flush()
				if err := p.w.Close(); err != nil {
					log.Printf("eventbus: close writer: %v", err)
				}
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) flush() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		log.Printf("eventbus: write %s: %v", m.Key, err)
	}
}

// Mirror queues n for the broker
func (p *Producer) Mirror(n events.Notice) {
	env, err := NewEnvelope(n, p.service, time.Now())
	if err != nil {
		log.Printf("eventbus: %v", err)
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		log.Printf("eventbus: marshal envelope: %v", err)
		return
	}
	m := kafka.Message{
		Key:   PartitionKey(n),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(env.EventType)},
			{Key: "x-event-version", Value: []byte(fmt.Sprint(EnvelopeVersion))},
		},
	}

	select {
	case <-p.stop:
		return
	default:
	}
	select {
	case p.inbox <- m:
	default:
		log.Printf("eventbus: inbox full, dropping %s", env.EventType)
	}
}

// WaitClosed blocks until the writer loop has flushed and exited
func (p *Producer) WaitClosed() { <-p.done }
