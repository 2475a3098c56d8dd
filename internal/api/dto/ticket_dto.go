package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/ticket-api/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	ReporterID   string                `json:"reporterId"`
	AssignedToID *string               `json:"assignedToId"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Type         domain.TicketType     `json:"type"`
}

// UpdateTicketRequest replaces every mutable field.
type UpdateTicketRequest struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Type         domain.TicketType     `json:"type"`
	AssignedToID *string               `json:"assignedToId"`
}

// PatchTicketRequest changes only the supplied fields.
type PatchTicketRequest struct {
	Title        *string                `json:"title,omitempty"`
	Description  *string                `json:"description,omitempty"`
	Status       *domain.TicketStatus   `json:"status,omitempty"`
	Priority     *domain.TicketPriority `json:"priority,omitempty"`
	Type         *domain.TicketType     `json:"type,omitempty"`
	AssignedToID NullableString         `json:"assignedToId"`
}

// TicketIDParams holds the path parameters of single-ticket routes.
type TicketIDParams struct {
	ID string `json:"id"`
}

// NullableString distinguishes an absent key from an explicit null.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON is only invoked when the key is present.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	ReporterID   string                `json:"reporterId"`
	AssignedToID *string               `json:"assignedToId"`
	Priority     domain.TicketPriority `json:"priority"`
	Type         domain.TicketType     `json:"type"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// NewTicketResponse maps the domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		ReporterID:   t.ReporterID,
		AssignedToID: t.AssignedToID,
		Priority:     t.Priority,
		Type:         t.Type,
		CreatedAt:    t.CreatedAt.UTC(),
		UpdatedAt:    t.UpdatedAt.UTC(),
	}
}
