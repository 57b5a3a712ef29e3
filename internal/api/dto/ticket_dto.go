package dto

import (
	"github.com/shopspring/decimal"

	"github.com/spec-kit/repair-desk/internal/domain"
)

// CreateTicketRequest payload. ReceivedDate is YYYY-MM-DD and defaults to today.
type CreateTicketRequest struct {
	Client        string          `json:"client"`
	Description   string          `json:"description"`
	Priority      int             `json:"priority"`
	ReceivedDate  string          `json:"received_date"`
	EquipmentType string          `json:"equipment_type"`
	Price         decimal.Decimal `json:"price"`
}

// SortTicketsRequest selects a criterion and direction.
type SortTicketsRequest struct {
	Criterion  string `json:"criterion"`
	Descending bool   `json:"descending"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	Position      int                  `json:"position,omitempty"`
	Code          string               `json:"code"`
	Client        string               `json:"client"`
	Description   string               `json:"description"`
	Priority      domain.Priority      `json:"priority"`
	PriorityLabel string               `json:"priority_label"`
	ReceivedDate  string               `json:"received_date"`
	DeliveredDate *string              `json:"delivered_date"`
	Status        domain.TicketStatus  `json:"status"`
	EquipmentType domain.EquipmentType `json:"equipment_type"`
	Price         string               `json:"price"`
}

// FoundTicketResponse carries a search hit and its zero-based index.
type FoundTicketResponse struct {
	Index  int            `json:"index"`
	Ticket TicketResponse `json:"ticket"`
}

// NewTicketResponse maps a ticket; position is 1-based, 0 omits it.
func NewTicketResponse(t domain.Ticket, position int) TicketResponse {
	resp := TicketResponse{
		Position:      position,
		Code:          t.Code,
		Client:        t.Client,
		Description:   t.Description,
		Priority:      t.Priority,
		PriorityLabel: t.Priority.Label(),
		ReceivedDate:  t.ReceivedDate.Format(domain.DateLayout),
		Status:        t.Status,
		EquipmentType: t.EquipmentType,
		Price:         t.Price.StringFixed(2),
	}
	if t.DeliveredDate != nil {
		d := t.DeliveredDate.Format(domain.DateLayout)
		resp.DeliveredDate = &d
	}
	return resp
}

// NewTicketList maps the desk sequence, numbering rows from 1.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(tickets[i], i+1))
	}
	return items
}
