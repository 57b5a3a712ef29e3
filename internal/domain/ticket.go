package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CodePrefix precedes the zero-padded sequence number of every ticket code.
const CodePrefix = "TKT-"

// DateLayout is the calendar date layout used at the API boundary.
const DateLayout = "2006-01-02"

// TicketStatus enumerates lifecycle states for repair tickets.
type TicketStatus string

const (
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusCompleted  TicketStatus = "COMPLETED"
)

// Priority is the repair urgency, 1 being the highest.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// Label renders the priority the way the intake form shows it.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "1-High"
	case PriorityMedium:
		return "2-Medium"
	case PriorityLow:
		return "3-Low"
	default:
		return fmt.Sprintf("%d-Unknown", int(p))
	}
}

// EquipmentType is the kind of device brought in for repair.
type EquipmentType string

const (
	EquipmentLaptop   EquipmentType = "Laptop"
	EquipmentPhone    EquipmentType = "Phone"
	EquipmentPrinter  EquipmentType = "Printer"
	EquipmentComputer EquipmentType = "Computer"
	EquipmentOther    EquipmentType = "Other"
)

// EquipmentTypes lists the accepted equipment types in intake-form order.
var EquipmentTypes = []EquipmentType{
	EquipmentLaptop,
	EquipmentPhone,
	EquipmentPrinter,
	EquipmentComputer,
	EquipmentOther,
}

// ParseEquipmentType matches s case-insensitively against the known labels.
func ParseEquipmentType(s string) (EquipmentType, bool) {
	s = strings.TrimSpace(s)
	for _, et := range EquipmentTypes {
		if strings.EqualFold(string(et), s) {
			return et, true
		}
	}
	return "", false
}

// Ticket is a single repair request held by the desk.
type Ticket struct {
	Code          string
	Client        string
	Description   string
	Priority      Priority
	ReceivedDate  time.Time
	DeliveredDate *time.Time
	Status        TicketStatus
	EquipmentType EquipmentType
	Price         decimal.Decimal
}

// Completed reports whether the ticket has been delivered.
func (t Ticket) Completed() bool {
	return t.Status == TicketStatusCompleted
}

// FormatCode builds the canonical code for sequence number n.
func FormatCode(n int) string {
	return fmt.Sprintf("%s%03d", CodePrefix, n)
}

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
