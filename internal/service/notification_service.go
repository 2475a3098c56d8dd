package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/config"
	"github.com/spec-kit/ticket-api/internal/events"
)

// NotificationService turns ticket events into notifications. Delivery is a
// log line plus an optional webhook hand-off.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// Notify delivers one ticket event.
func (n *NotificationService) Notify(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventTicketCreated:
		p, _ := event.Created()
		n.logger.Info("ticket created",
			zap.String("ticket_id", event.TicketID),
			zap.String("reporter_id", p.ReporterID),
			zap.String("priority", string(p.Priority)),
			zap.String("type", string(p.Type)))
	case events.EventTicketUpdated:
		p, _ := event.Updated()
		n.logger.Info("ticket updated",
			zap.String("ticket_id", event.TicketID),
			zap.Strings("fields", p.Fields),
			zap.String("status", string(p.Status)),
			zap.Bool("replaced", p.Replaced))
	case events.EventTicketDeleted:
		n.logger.Info("ticket deleted", zap.String("ticket_id", event.TicketID))
	default:
		return fmt.Errorf("unsupported event type %q", event.Type)
	}
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhook(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
