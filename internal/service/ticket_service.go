package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/domain"
	"github.com/spec-kit/ticket-api/internal/events"
	"github.com/spec-kit/ticket-api/internal/repository"
	apperrors "github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

// TicketService is the ticket store: it owns id generation and timestamps and
// maps backend condition failures to ticket_not_found.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Clock defaults to domain.Now.
	Clock func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title        string
	Description  string
	ReporterID   string
	AssignedToID *string
	Status       domain.TicketStatus
	Priority     domain.TicketPriority
	Type         domain.TicketType
}

// TicketUpdateInput replaces every mutable field.
type TicketUpdateInput struct {
	Title        string
	Description  string
	Status       domain.TicketStatus
	Priority     domain.TicketPriority
	Type         domain.TicketType
	AssignedToID *string
}

// TicketPatchInput carries only the fields to change.
type TicketPatchInput struct {
	Title         *string
	Description   *string
	Status        *domain.TicketStatus
	Priority      *domain.TicketPriority
	Type          *domain.TicketType
	SetAssignedTo bool
	AssignedToID  *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = domain.Now
	}
	return svc
}

// Create stores a new ticket. The id is fresh, so the write is unconditional.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	now := s.now()
	ticket := &domain.Ticket{
		ID:           uuid.NewString(),
		Title:        input.Title,
		Description:  input.Description,
		Status:       input.Status,
		ReporterID:   input.ReporterID,
		AssignedToID: input.AssignedToID,
		Priority:     input.Priority,
		Type:         input.Type,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.tickets.Put(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.TicketCreated(ticket))
	return ticket, nil
}

// GetByID returns the ticket and whether it exists. Absence is not an error.
func (s *TicketService) GetByID(ctx context.Context, id string) (*domain.Ticket, bool, error) {
	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return ticket, ticket != nil, nil
}

// List returns every ticket in backend order.
func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.Scan(ctx)
}

// Update replaces all mutable fields of an existing ticket.
func (s *TicketService) Update(ctx context.Context, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	changes := domain.TicketChanges{
		Title:         &input.Title,
		Description:   &input.Description,
		Status:        &input.Status,
		Priority:      &input.Priority,
		Type:          &input.Type,
		SetAssignedTo: true,
		AssignedToID:  input.AssignedToID,
		UpdatedAt:     s.now(),
	}
	return s.mutate(ctx, id, changes, true)
}

// Patch changes the supplied fields of an existing ticket.
func (s *TicketService) Patch(ctx context.Context, id string, input TicketPatchInput) (*domain.Ticket, error) {
	changes := domain.TicketChanges{
		Title:         input.Title,
		Description:   input.Description,
		Status:        input.Status,
		Priority:      input.Priority,
		Type:          input.Type,
		SetAssignedTo: input.SetAssignedTo,
		AssignedToID:  input.AssignedToID,
		UpdatedAt:     s.now(),
	}
	return s.mutate(ctx, id, changes, false)
}

// Delete physically removes an existing ticket.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		return s.translate(id, err)
	}
	s.publishEvent(ctx, events.TicketDeleted(id, s.now()))
	return nil
}

func (s *TicketService) mutate(ctx context.Context, id string, changes domain.TicketChanges, replaced bool) (*domain.Ticket, error) {
	ticket, err := s.tickets.Update(ctx, id, changes)
	if err != nil {
		return nil, s.translate(id, err)
	}
	s.publishEvent(ctx, events.TicketUpdated(ticket, changedFields(changes), replaced))
	return ticket, nil
}

func (s *TicketService) translate(id string, err error) error {
	if errors.Is(err, repository.ErrConditionFailed) {
		return apperrors.NewTicketNotFound(id)
	}
	return err
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func changedFields(c domain.TicketChanges) []string {
	fields := []string{}
	if c.Title != nil {
		fields = append(fields, "title")
	}
	if c.Description != nil {
		fields = append(fields, "description")
	}
	if c.Status != nil {
		fields = append(fields, "status")
	}
	if c.Priority != nil {
		fields = append(fields, "priority")
	}
	if c.Type != nil {
		fields = append(fields, "type")
	}
	if c.SetAssignedTo {
		fields = append(fields, "assignedToId")
	}
	return fields
}
