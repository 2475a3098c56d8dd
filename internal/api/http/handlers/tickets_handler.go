package handlers

import (
	"context"
	"net/http"

	"github.com/spec-kit/ticket-api/internal/api/dto"
	"github.com/spec-kit/ticket-api/internal/api/envelope"
	"github.com/spec-kit/ticket-api/internal/api/router"
	"github.com/spec-kit/ticket-api/internal/service"
	"github.com/spec-kit/ticket-api/internal/validation"
	apperrors "github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

type idAndUpdate = router.ParamsAndBody[dto.TicketIDParams, dto.UpdateTicketRequest]
type idAndPatch = router.ParamsAndBody[dto.TicketIDParams, dto.PatchTicketRequest]

// TicketsHandler serves the ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
	builder *envelope.Builder
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, builder *envelope.Builder) *TicketsHandler {
	return &TicketsHandler{service: ticketService, builder: builder}
}

// Routes returns the ticket route table in match order.
func (h *TicketsHandler) Routes() []router.Route {
	return []router.Route{
		{Method: http.MethodPost, Pattern: "/tickets", Handler: router.WithBody(validation.CreateTicket, h.CreateTicket)},
		{Method: http.MethodGet, Pattern: "/tickets", Handler: h.ListTickets},
		{Method: http.MethodGet, Pattern: "/tickets/{id}", Handler: router.WithParams(validation.TicketID, h.GetTicket)},
		{Method: http.MethodPut, Pattern: "/tickets/{id}", Handler: router.WithParamsAndBody(validation.TicketID, validation.UpdateTicket, h.UpdateTicket)},
		{Method: http.MethodPatch, Pattern: "/tickets/{id}", Handler: router.WithParamsAndBody(validation.TicketID, validation.PatchTicket, h.PatchTicket)},
		{Method: http.MethodDelete, Pattern: "/tickets/{id}", Handler: router.WithParams(validation.TicketID, h.DeleteTicket)},
	}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(ctx context.Context, req dto.CreateTicketRequest, _ envelope.Request) (envelope.Response, error) {
	ticket, err := h.service.Create(ctx, service.TicketCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		ReporterID:   req.ReporterID,
		AssignedToID: req.AssignedToID,
		Status:       req.Status,
		Priority:     req.Priority,
		Type:         req.Type,
	})
	if err != nil {
		return envelope.Response{}, err
	}
	return h.builder.Created(dto.NewTicketResponse(ticket))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(ctx context.Context, _ envelope.Request) (envelope.Response, error) {
	tickets, err := h.service.List(ctx)
	if err != nil {
		return envelope.Response{}, err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return h.builder.OK(items)
}

// GetTicket GET /tickets/{id}.
func (h *TicketsHandler) GetTicket(ctx context.Context, params dto.TicketIDParams, _ envelope.Request) (envelope.Response, error) {
	ticket, found, err := h.service.GetByID(ctx, params.ID)
	if err != nil {
		return envelope.Response{}, err
	}
	if !found {
		return envelope.Response{}, apperrors.NewTicketNotFound(params.ID)
	}
	return h.builder.OK(dto.NewTicketResponse(ticket))
}

// UpdateTicket PUT /tickets/{id}.
func (h *TicketsHandler) UpdateTicket(ctx context.Context, in idAndUpdate, _ envelope.Request) (envelope.Response, error) {
	body := in.Body
	ticket, err := h.service.Update(ctx, in.Params.ID, service.TicketUpdateInput{
		Title:        body.Title,
		Description:  body.Description,
		Status:       body.Status,
		Priority:     body.Priority,
		Type:         body.Type,
		AssignedToID: body.AssignedToID,
	})
	if err != nil {
		return envelope.Response{}, err
	}
	return h.builder.OK(dto.NewTicketResponse(ticket))
}

// PatchTicket PATCH /tickets/{id}.
func (h *TicketsHandler) PatchTicket(ctx context.Context, in idAndPatch, _ envelope.Request) (envelope.Response, error) {
	ticket, err := h.service.Patch(ctx, in.Params.ID, patchInput(in.Body))
	if err != nil {
		return envelope.Response{}, err
	}
	return h.builder.OK(dto.NewTicketResponse(ticket))
}

// DeleteTicket DELETE /tickets/{id}.
func (h *TicketsHandler) DeleteTicket(ctx context.Context, params dto.TicketIDParams, _ envelope.Request) (envelope.Response, error) {
	if err := h.service.Delete(ctx, params.ID); err != nil {
		return envelope.Response{}, err
	}
	return h.builder.NoContent(), nil
}

func patchInput(body dto.PatchTicketRequest) service.TicketPatchInput {
	input := service.TicketPatchInput{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		Type:        body.Type,
	}
	if body.AssignedToID.Set {
		input.SetAssignedTo = true
		input.AssignedToID = body.AssignedToID.Value
	}
	return input
}
