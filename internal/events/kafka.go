// Package events publishes order events.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/fftopup/internal/orders"
)

// ErrClosed is returned by Publish once the producer loop has stopped.
var ErrClosed = errors.New("publisher closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher buffers events in memory and writes them to a topic from a
// single goroutine, keyed by order id. Every event Publish accepts is written
// before the writer closes.
type KafkaPublisher struct {
	w     messageWriter
	inbox chan kafka.Message
	// mu is held shared by Publish while it queues; shutdown takes it
	// exclusively after closing so no send lands behind the final drain.
	mu      sync.RWMutex
	closing chan struct{}
	stopped chan struct{}
}

func NewKafkaPublisher(brokers []string, topic string, buf int) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}, buf)
}

func newKafkaPublisher(w messageWriter, buf int) *KafkaPublisher {
	return &KafkaPublisher{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		closing: make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start runs the write loop until ctx is cancelled, then flushes what is
// still buffered and closes the writer.
func (p *KafkaPublisher) Start(ctx context.Context) {
	go func() {
		defer close(p.stopped)
		for {
			select {
			case <-ctx.Done():
				close(p.closing)
				p.mu.Lock()
				p.drain()
				p.mu.Unlock()
				if err := p.w.Close(); err != nil {
					log.Printf("[Events] writer close failed: %v", err)
				}
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *KafkaPublisher) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			return
		}
	}
}

func (p *KafkaPublisher) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		log.Printf("[Events] write %s failed: %v", m.Key, err)
	}
}

// Publish queues event. It blocks while the buffer is full and returns
// ErrClosed once shutdown has begun.
func (p *KafkaPublisher) Publish(ctx context.Context, event orders.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	m := kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.closing:
		return ErrClosed
	default:
	}

	select {
	case p.inbox <- m:
		return nil
	case <-p.closing:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitClosed blocks until the loop started by Start has flushed and exited.
func (p *KafkaPublisher) WaitClosed() { <-p.stopped }
