package repository

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/repair-desk/internal/domain"
	apperrors "github.com/spec-kit/repair-desk/pkg/util/errorutil"
)

// TicketCreate carries the intake form values for a new ticket.
type TicketCreate struct {
	Client        string
	Description   string
	Priority      domain.Priority
	ReceivedDate  time.Time
	EquipmentType domain.EquipmentType
	Price         decimal.Decimal
}

// TicketRepository owns the desk's ordered ticket sequence.
type TicketRepository interface {
	Create(ctx context.Context, input TicketCreate) (domain.Ticket, error)
	List(ctx context.Context) []domain.Ticket
	Len(ctx context.Context) int
	Reorder(ctx context.Context, fn func([]domain.Ticket)) ([]domain.Ticket, error)
	Find(ctx context.Context, numericInput string) (int, domain.Ticket, error)
	CompleteAt(ctx context.Context, index int, at time.Time) (domain.Ticket, error)
	CompleteByCode(ctx context.Context, code string, at time.Time) (domain.Ticket, error)
	DeleteAt(ctx context.Context, index int) (domain.Ticket, error)
	DeleteByCode(ctx context.Context, code string) (domain.Ticket, error)
	Snapshot(ctx context.Context) domain.DeskSnapshot
	Restore(ctx context.Context, snap domain.DeskSnapshot)
}

type deskRepository struct {
	mu      sync.Mutex
	tickets []domain.Ticket
	lastSeq int
}

// NewTicketRepository instantiates an empty desk.
func NewTicketRepository() TicketRepository {
	return &deskRepository{}
}

// ValidateCreate checks the intake preconditions.
func ValidateCreate(input TicketCreate) error {
	details := map[string]any{}
	if !input.Priority.Valid() {
		details["priority"] = "must be 1, 2 or 3"
	}
	if input.Price.IsNegative() {
		details["price"] = "must not be negative"
	}
	if _, ok := domain.ParseEquipmentType(string(input.EquipmentType)); !ok {
		details["equipment_type"] = "unknown equipment type"
	}
	if input.ReceivedDate.IsZero() {
		details["received_date"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid ticket", details)
	}
	return nil
}

func (r *deskRepository) Create(_ context.Context, input TicketCreate) (domain.Ticket, error) {
	if err := ValidateCreate(input); err != nil {
		return domain.Ticket{}, err
	}
	equipment, _ := domain.ParseEquipmentType(string(input.EquipmentType))

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastSeq++
	ticket := domain.Ticket{
		Code:          domain.FormatCode(r.lastSeq),
		Client:        strings.TrimSpace(input.Client),
		Description:   strings.TrimSpace(input.Description),
		Priority:      input.Priority,
		ReceivedDate:  domain.DateOf(input.ReceivedDate),
		Status:        domain.TicketStatusInProgress,
		EquipmentType: equipment,
		Price:         input.Price,
	}
	r.tickets = append(r.tickets, ticket)
	return ticket, nil
}

func (r *deskRepository) List(_ context.Context) []domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneTickets(r.tickets)
}

func (r *deskRepository) Len(_ context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}

// Reorder hands the live sequence to fn and returns a copy of the result.
func (r *deskRepository) Reorder(_ context.Context, fn func([]domain.Ticket)) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tickets) == 0 {
		return nil, apperrors.NewEmptyCollection("sort")
	}
	fn(r.tickets)
	return cloneTickets(r.tickets), nil
}

func (r *deskRepository) Find(_ context.Context, numericInput string) (int, domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tickets) == 0 {
		return -1, domain.Ticket{}, apperrors.NewEmptyCollection("search")
	}
	idx, err := FindByCode(r.tickets, numericInput)
	if err != nil {
		return -1, domain.Ticket{}, err
	}
	return idx, cloneTicket(r.tickets[idx]), nil
}

func (r *deskRepository) CompleteAt(_ context.Context, index int, at time.Time) (domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completeLocked(index, at)
}

func (r *deskRepository) CompleteByCode(_ context.Context, code string, at time.Time) (domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tickets) == 0 {
		return domain.Ticket{}, apperrors.NewEmptyCollection("edit")
	}
	idx := IndexOfCode(r.tickets, code)
	if idx < 0 {
		return domain.Ticket{}, apperrors.NewNotFound("ticket", map[string]any{"code": code})
	}
	return r.completeLocked(idx, at)
}

func (r *deskRepository) completeLocked(index int, at time.Time) (domain.Ticket, error) {
	if len(r.tickets) == 0 {
		return domain.Ticket{}, apperrors.NewEmptyCollection("edit")
	}
	if err := MarkCompleted(r.tickets, index, at); err != nil {
		return domain.Ticket{}, err
	}
	return cloneTicket(r.tickets[index]), nil
}

func (r *deskRepository) DeleteAt(_ context.Context, index int) (domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteLocked(index)
}

func (r *deskRepository) DeleteByCode(_ context.Context, code string) (domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tickets) == 0 {
		return domain.Ticket{}, apperrors.NewEmptyCollection("delete")
	}
	idx := IndexOfCode(r.tickets, code)
	if idx < 0 {
		return domain.Ticket{}, apperrors.NewNotFound("ticket", map[string]any{"code": code})
	}
	return r.deleteLocked(idx)
}

func (r *deskRepository) deleteLocked(index int) (domain.Ticket, error) {
	if len(r.tickets) == 0 {
		return domain.Ticket{}, apperrors.NewEmptyCollection("delete")
	}
	if err := checkIndex(r.tickets, index); err != nil {
		return domain.Ticket{}, err
	}
	removed := r.tickets[index]
	tickets, err := Delete(r.tickets, index)
	if err != nil {
		return domain.Ticket{}, err
	}
	r.tickets = tickets
	return removed, nil
}

func (r *deskRepository) Snapshot(_ context.Context) domain.DeskSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.DeskSnapshot{LastSeq: r.lastSeq, Tickets: cloneTickets(r.tickets)}
}

// Restore replaces the desk state. The counter never moves below the highest
// code already present.
func (r *deskRepository) Restore(_ context.Context, snap domain.DeskSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets = cloneTickets(snap.Tickets)
	r.lastSeq = snap.LastSeq
	for _, t := range r.tickets {
		if n := codeSeq(t.Code); n > r.lastSeq {
			r.lastSeq = n
		}
	}
}

func codeSeq(code string) int {
	rest, ok := strings.CutPrefix(code, domain.CodePrefix)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0
	}
	return n
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.DeliveredDate != nil {
		d := *t.DeliveredDate
		t.DeliveredDate = &d
	}
	return t
}

func cloneTickets(src []domain.Ticket) []domain.Ticket {
	out := make([]domain.Ticket, len(src))
	for i := range src {
		out[i] = cloneTicket(src[i])
	}
	return out
}
