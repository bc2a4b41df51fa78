package events

import (
	"context"
	"log"

	"github.com/example/fftopup/internal/orders"
)

// LogPublisher writes events to the process log. It is used when no broker
// is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e orders.Event) error {
	if e.From != "" {
		log.Printf("[Events] %s %s order %s %s -> %s override=%t", e.Type, e.Kind, e.OrderID, e.From, e.Status, e.Override)
		return nil
	}
	log.Printf("[Events] %s %s order %s status=%s", e.Type, e.Kind, e.OrderID, e.Status)
	return nil
}
