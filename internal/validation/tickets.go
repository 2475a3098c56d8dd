package validation

import (
	"github.com/spec-kit/ticket-api/internal/api/dto"
	"github.com/spec-kit/ticket-api/internal/domain"
)

const (
	TitleMaxLength       = 255
	DescriptionMaxLength = 1000
)

func titleField(required bool) Field {
	return Field{Name: "title", Kind: KindString, Required: required, Min: 1, Max: TitleMaxLength}
}

func descriptionField(required bool) Field {
	return Field{Name: "description", Kind: KindString, Required: required, Min: 1, Max: DescriptionMaxLength}
}

func statusField(required bool, def string) Field {
	return Field{Name: "status", Kind: KindEnum, Required: required, Enum: domain.TicketStatuses, Default: def}
}

func priorityField(required bool, def string) Field {
	return Field{Name: "priority", Kind: KindEnum, Required: required, Enum: domain.TicketPriorities, Default: def}
}

func typeField(required bool, def string) Field {
	return Field{Name: "type", Kind: KindEnum, Required: required, Enum: domain.TicketTypes, Default: def}
}

func assigneeField(required bool) Field {
	return Field{Name: "assignedToId", Kind: KindUUID, Required: required, Nullable: true}
}

// CreateTicketSchema validates POST bodies.
var CreateTicketSchema = Schema{
	Context: "create ticket",
	Fields: []Field{
		titleField(true),
		descriptionField(true),
		{Name: "reporterId", Kind: KindUUID, Required: true},
		assigneeField(false),
		statusField(false, string(domain.TicketStatusNew)),
		priorityField(false, string(domain.TicketPriorityMedium)),
		typeField(false, string(domain.TicketTypeIncident)),
	},
}

// UpdateTicketSchema validates PUT bodies: every mutable field is required.
var UpdateTicketSchema = Schema{
	Context: "update ticket",
	Fields: []Field{
		titleField(true),
		descriptionField(true),
		statusField(true, ""),
		priorityField(true, ""),
		typeField(true, ""),
		assigneeField(true),
	},
}

// PatchTicketSchema validates PATCH bodies.
var PatchTicketSchema = Schema{
	Context: "patch ticket",
	Fields: []Field{
		titleField(false),
		descriptionField(false),
		statusField(false, ""),
		priorityField(false, ""),
		typeField(false, ""),
		assigneeField(false),
	},
	RequireAny: true,
}

// TicketIDSchema validates the id path parameter.
var TicketIDSchema = Schema{
	Context: "ticket id",
	Fields: []Field{
		{Name: "id", Kind: KindUUID, Required: true},
	},
}

var (
	CreateTicket = New[dto.CreateTicketRequest](CreateTicketSchema)
	UpdateTicket = New[dto.UpdateTicketRequest](UpdateTicketSchema)
	PatchTicket  = New[dto.PatchTicketRequest](PatchTicketSchema)
	TicketID     = New[dto.TicketIDParams](TicketIDSchema)
)
