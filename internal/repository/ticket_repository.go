package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/ticket-api/internal/domain"
)

// ErrConditionFailed is returned when a conditional mutation finds no record
// with the given id. Backends evaluate the condition atomically with the write.
var ErrConditionFailed = errors.New("condition failed: ticket does not exist")

// TicketRepository is the single-table ticket store.
type TicketRepository interface {
	// Put writes the record unconditionally.
	Put(ctx context.Context, ticket *domain.Ticket) error
	// Get returns nil, nil when the id is absent.
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	// Scan returns every record in backend order.
	Scan(ctx context.Context) ([]domain.Ticket, error)
	// Update applies changes only if the id exists and returns the new record.
	Update(ctx context.Context, id string, changes domain.TicketChanges) (*domain.Ticket, error)
	// Delete removes the record only if the id exists.
	Delete(ctx context.Context, id string) error
	// Ping checks backend reachability.
	Ping(ctx context.Context) error
}
