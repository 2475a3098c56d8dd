package events

import (
	"time"

	"github.com/spec-kit/ticket-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
	EventTicketDeleted EventType = "ticket_deleted"
)

// TicketEventTypes lists every event the ticket service publishes.
var TicketEventTypes = []EventType{EventTicketCreated, EventTicketUpdated, EventTicketDeleted}

// Event represents a domain event emitted after a successful write.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticketId"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// TicketCreatedPayload carries the classification of a new ticket.
type TicketCreatedPayload struct {
	ReporterID string                `json:"reporterId"`
	Status     domain.TicketStatus   `json:"status"`
	Priority   domain.TicketPriority `json:"priority"`
	Type       domain.TicketType     `json:"type"`
}

// TicketUpdatedPayload lists the fields a write touched.
type TicketUpdatedPayload struct {
	Fields   []string            `json:"fields"`
	Status   domain.TicketStatus `json:"status"`
	Replaced bool                `json:"replaced"`
}

// TicketCreated builds the event for a stored ticket.
func TicketCreated(t *domain.Ticket) Event {
	return Event{
		Type:      EventTicketCreated,
		TicketID:  t.ID,
		Timestamp: t.CreatedAt,
		Payload: TicketCreatedPayload{
			ReporterID: t.ReporterID,
			Status:     t.Status,
			Priority:   t.Priority,
			Type:       t.Type,
		},
	}
}

// TicketUpdated builds the event for a PUT (replaced) or PATCH write.
func TicketUpdated(t *domain.Ticket, fields []string, replaced bool) Event {
	return Event{
		Type:      EventTicketUpdated,
		TicketID:  t.ID,
		Timestamp: t.UpdatedAt,
		Payload: TicketUpdatedPayload{
			Fields:   fields,
			Status:   t.Status,
			Replaced: replaced,
		},
	}
}

// TicketDeleted builds the event for a removed ticket.
func TicketDeleted(id string, at time.Time) Event {
	return Event{Type: EventTicketDeleted, TicketID: id, Timestamp: at}
}

// Created returns the payload of a ticket_created event.
func (e Event) Created() (TicketCreatedPayload, bool) {
	p, ok := e.Payload.(TicketCreatedPayload)
	return p, ok && e.Type == EventTicketCreated
}

// Updated returns the payload of a ticket_updated event.
func (e Event) Updated() (TicketUpdatedPayload, bool) {
	p, ok := e.Payload.(TicketUpdatedPayload)
	return p, ok && e.Type == EventTicketUpdated
}
