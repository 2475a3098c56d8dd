package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// TicketType classifies the request.
type TicketType string

const (
	TicketTypeIncident       TicketType = "INCIDENT"
	TicketTypeServiceRequest TicketType = "SERVICE_REQUEST"
	TicketTypeQuestion       TicketType = "QUESTION"
)

// Allowed values, in declaration order.
var (
	TicketStatuses   = []string{string(TicketStatusNew), string(TicketStatusOpen), string(TicketStatusInProgress), string(TicketStatusResolved), string(TicketStatusClosed)}
	TicketPriorities = []string{string(TicketPriorityLow), string(TicketPriorityMedium), string(TicketPriorityHigh), string(TicketPriorityCritical)}
	TicketTypes      = []string{string(TicketTypeIncident), string(TicketTypeServiceRequest), string(TicketTypeQuestion)}
)

// Ticket is the support request aggregate.
type Ticket struct {
	ID           string
	Title        string
	Description  string
	Status       TicketStatus
	ReporterID   string
	AssignedToID *string
	Priority     TicketPriority
	Type         TicketType
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TicketChanges lists the mutable fields to overwrite. Nil pointers are left
// untouched; AssignedToID is only applied when SetAssignedTo is true so that a
// nil value can clear the assignee.
type TicketChanges struct {
	Title         *string
	Description   *string
	Status        *TicketStatus
	Priority      *TicketPriority
	Type          *TicketType
	SetAssignedTo bool
	AssignedToID  *string
	UpdatedAt     time.Time
}

// Apply copies the changes onto t.
func (c TicketChanges) Apply(t *Ticket) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.Type != nil {
		t.Type = *c.Type
	}
	if c.SetAssignedTo {
		t.AssignedToID = c.AssignedToID
	}
	t.UpdatedAt = c.UpdatedAt
}

// Now returns the timestamp precision stored for tickets.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
