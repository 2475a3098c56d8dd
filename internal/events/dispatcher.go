package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans ticket events out to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// SubscribeTickets registers handler for every ticket event type.
func SubscribeTickets(d Dispatcher, handler EventHandler) {
	for _, et := range TicketEventTypes {
		d.Subscribe(et, handler)
	}
}

// inMemoryDispatcher runs handlers synchronously on the publishing goroutine,
// in subscription order. A failing handler does not stop the others.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	now       func() time.Time
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		now:       time.Now,
	}
}

// Publish stamps a missing id or timestamp, invokes every handler for the
// event type and joins their errors.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	if event.Type == "" || event.TicketID == "" {
		return fmt.Errorf("event %q for ticket %q is incomplete", event.Type, event.TicketID)
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now().UTC()
	}

	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", event.Type, event.TicketID, err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
