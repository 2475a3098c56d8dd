package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/events"
)

// DefaultQueueSize bounds the notification backlog.
const DefaultQueueSize = 64

const notifyTimeout = 10 * time.Second

// ErrQueueFull is returned to the publisher when a ticket event is dropped.
var ErrQueueFull = errors.New("notification queue full")

// Notifier delivers one ticket event.
type Notifier interface {
	Notify(ctx context.Context, event events.Event) error
}

// NotificationWorker moves ticket notifications off the request path. Events
// are queued by the dispatcher and delivered in order by one goroutine.
type NotificationWorker struct {
	notifier Notifier
	logger   *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan events.Event
	done   chan struct{}
}

// StartNotificationWorker subscribes a worker to every ticket event and starts
// delivery. A nil notifier yields a nil worker, which is safe to Stop.
func StartNotificationWorker(dispatcher events.Dispatcher, notifier Notifier, logger *zap.Logger, queueSize int) *NotificationWorker {
	if dispatcher == nil || notifier == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	w := &NotificationWorker{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan events.Event, queueSize),
		done:     make(chan struct{}),
	}
	go w.run()
	events.SubscribeTickets(dispatcher, w.enqueue)
	return w
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrQueueFull
	}
	select {
	case w.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *NotificationWorker) run() {
	defer close(w.done)
	for event := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		if err := w.notifier.Notify(ctx, event); err != nil {
			w.logger.Warn("notification failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.String("ticket_id", event.TicketID),
				zap.Error(err))
		}
		cancel()
	}
}

// Stop rejects new events, delivers the backlog and waits for it to drain.
func (w *NotificationWorker) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
}
