package app

import (
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/api/envelope"
	"github.com/spec-kit/ticket-api/internal/api/http/handlers"
	"github.com/spec-kit/ticket-api/internal/api/router"
	"github.com/spec-kit/ticket-api/internal/config"
	"github.com/spec-kit/ticket-api/internal/events"
	"github.com/spec-kit/ticket-api/internal/observability"
	"github.com/spec-kit/ticket-api/internal/service"
	"github.com/spec-kit/ticket-api/internal/worker"
)

// API is the transport-neutral ticket API shared by the HTTP server and the
// Lambda handler.
type API struct {
	Builder    *envelope.Builder
	Metrics    *observability.Metrics
	Tickets    *service.TicketService
	Dispatcher *router.Dispatcher

	notifications *worker.NotificationWorker
}

// NewAPI wires the ticket service, its event consumers and the route table.
func NewAPI(cfg *config.Config, store *Store, logger *zap.Logger) *API {
	builder := envelope.NewBuilder(cfg.CORS)
	metrics := observability.NewMetrics()

	bus := events.NewInMemoryDispatcher()
	notifications := worker.StartNotificationWorker(bus, service.NewNotificationService(logger, cfg.Notification), logger, cfg.Notification.QueueSize)

	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo: store.Repo,
		Dispatcher: bus,
		Logger:     logger,
	})
	th := handlers.NewTicketsHandler(tickets, builder)

	return &API{
		Builder:    builder,
		Metrics:    metrics,
		Tickets:    tickets,
		Dispatcher: router.New(builder, logger, metrics, th.Routes()...),

		notifications: notifications,
	}
}

// Close delivers pending notifications. Call it after the transport stops.
func (a *API) Close() {
	a.notifications.Stop()
}
