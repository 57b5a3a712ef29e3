package events

import (
	"time"

	"github.com/spec-kit/repair-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketsSorted   EventType = "tickets_sorted"
	EventTicketCompleted EventType = "ticket_completed"
	EventTicketDeleted   EventType = "ticket_deleted"
)

// Event represents a desk event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	TicketCode string      `json:"ticket_code,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Client        string               `json:"client"`
	Priority      domain.Priority      `json:"priority"`
	EquipmentType domain.EquipmentType `json:"equipment_type"`
	Price         string               `json:"price"`
}

// TicketsSortedPayload payload.
type TicketsSortedPayload struct {
	Criterion  string `json:"criterion"`
	Descending bool   `json:"descending"`
	Count      int    `json:"count"`
}

// TicketCompletedPayload payload.
type TicketCompletedPayload struct {
	Client        string `json:"client"`
	DeliveredDate string `json:"delivered_date"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Client string              `json:"client"`
	Status domain.TicketStatus `json:"status"`
}
