package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-desk/internal/domain"
	"github.com/spec-kit/repair-desk/internal/events"
	"github.com/spec-kit/repair-desk/internal/observability"
	"github.com/spec-kit/repair-desk/internal/repository"
	"github.com/spec-kit/repair-desk/internal/sorting"
)

// TicketService coordinates desk workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	snapshots  repository.SnapshotRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time

	// saveMu orders snapshot writes so a stale desk never overwrites a newer one.
	saveMu sync.Mutex
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	SnapshotRepo repository.SnapshotRepository
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	Now          func() time.Time
}

// TicketCreateInput describes the intake form.
type TicketCreateInput struct {
	Client        string
	Description   string
	Priority      domain.Priority
	ReceivedDate  *time.Time
	EquipmentType domain.EquipmentType
	Price         decimal.Decimal
}

// FoundTicket is a search hit and its current position.
type FoundTicket struct {
	Index  int
	Ticket domain.Ticket
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:    deps.TicketRepo,
		snapshots:  deps.SnapshotRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if s.tickets == nil {
		s.tickets = repository.NewTicketRepository()
	}
	if s.snapshots == nil {
		s.snapshots = repository.NewNoopSnapshotRepository()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Restore loads the last saved desk session, if any.
func (s *TicketService) Restore(ctx context.Context) error {
	snap, ok, err := s.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load desk snapshot: %w", err)
	}
	if !ok {
		return nil
	}
	s.tickets.Restore(ctx, snap)
	s.logger.Info("desk restored", zap.Int("tickets", len(snap.Tickets)), zap.Int("last_seq", snap.LastSeq))
	return nil
}

// CreateTicket appends a new in-progress ticket. The received date defaults
// to today.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (domain.Ticket, error) {
	received := s.now()
	if input.ReceivedDate != nil {
		received = *input.ReceivedDate
	}
	ticket, err := s.tickets.Create(ctx, repository.TicketCreate{
		Client:        input.Client,
		Description:   input.Description,
		Priority:      input.Priority,
		ReceivedDate:  received,
		EquipmentType: input.EquipmentType,
		Price:         input.Price,
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.logger.Info("ticket registered", zap.String("code", ticket.Code), zap.Int("priority", int(ticket.Priority)))
	s.afterMutation(ctx, "create", events.Event{
		Type:       events.EventTicketCreated,
		TicketCode: ticket.Code,
		Payload: events.TicketCreatedPayload{
			Client:        ticket.Client,
			Priority:      ticket.Priority,
			EquipmentType: ticket.EquipmentType,
			Price:         ticket.Price.StringFixed(2),
		},
	})
	return ticket, nil
}

// ListTickets returns the desk in its current order.
func (s *TicketService) ListTickets(ctx context.Context) []domain.Ticket {
	return s.tickets.List(ctx)
}

// SortTickets reorders the desk in place and returns the new order.
func (s *TicketService) SortTickets(ctx context.Context, criterion sorting.Criterion, descending bool) ([]domain.Ticket, error) {
	fn, err := sorting.Lookup(criterion)
	if err != nil {
		return nil, err
	}
	sorted, err := s.tickets.Reorder(ctx, func(tickets []domain.Ticket) {
		fn(tickets, descending)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tickets sorted",
		zap.String("criterion", string(criterion)),
		zap.Bool("descending", descending),
		zap.Int("count", len(sorted)))
	s.afterMutation(ctx, "sort", events.Event{
		Type: events.EventTicketsSorted,
		Payload: events.TicketsSortedPayload{
			Criterion:  string(criterion),
			Descending: descending,
			Count:      len(sorted),
		},
	})
	return sorted, nil
}

// FindTicket resolves a ticket number such as "2" or "042".
func (s *TicketService) FindTicket(ctx context.Context, numericInput string) (FoundTicket, error) {
	idx, ticket, err := s.tickets.Find(ctx, numericInput)
	if err != nil {
		return FoundTicket{}, err
	}
	return FoundTicket{Index: idx, Ticket: ticket}, nil
}

// CompleteTicket marks the ticket with code completed, resolving its
// position at mutation time.
func (s *TicketService) CompleteTicket(ctx context.Context, code string) (domain.Ticket, error) {
	ticket, err := s.tickets.CompleteByCode(ctx, code, s.now())
	if err != nil {
		return domain.Ticket{}, err
	}
	s.completed(ctx, ticket)
	return ticket, nil
}

// CompleteAt marks the ticket at index completed.
func (s *TicketService) CompleteAt(ctx context.Context, index int) (domain.Ticket, error) {
	ticket, err := s.tickets.CompleteAt(ctx, index, s.now())
	if err != nil {
		return domain.Ticket{}, err
	}
	s.completed(ctx, ticket)
	return ticket, nil
}

// DeleteTicket removes the ticket with code, resolving its position at
// mutation time.
func (s *TicketService) DeleteTicket(ctx context.Context, code string) (domain.Ticket, error) {
	ticket, err := s.tickets.DeleteByCode(ctx, code)
	if err != nil {
		return domain.Ticket{}, err
	}
	s.deleted(ctx, ticket)
	return ticket, nil
}

// DeleteAt removes the ticket at index.
func (s *TicketService) DeleteAt(ctx context.Context, index int) (domain.Ticket, error) {
	ticket, err := s.tickets.DeleteAt(ctx, index)
	if err != nil {
		return domain.Ticket{}, err
	}
	s.deleted(ctx, ticket)
	return ticket, nil
}

func (s *TicketService) completed(ctx context.Context, ticket domain.Ticket) {
	delivered := ""
	if ticket.DeliveredDate != nil {
		delivered = ticket.DeliveredDate.Format(domain.DateLayout)
	}
	s.logger.Info("ticket completed", zap.String("code", ticket.Code), zap.String("delivered_date", delivered))
	s.afterMutation(ctx, "complete", events.Event{
		Type:       events.EventTicketCompleted,
		TicketCode: ticket.Code,
		Payload: events.TicketCompletedPayload{
			Client:        ticket.Client,
			DeliveredDate: delivered,
		},
	})
}

func (s *TicketService) deleted(ctx context.Context, ticket domain.Ticket) {
	s.logger.Info("ticket deleted", zap.String("code", ticket.Code))
	s.afterMutation(ctx, "delete", events.Event{
		Type:       events.EventTicketDeleted,
		TicketCode: ticket.Code,
		Payload: events.TicketDeletedPayload{
			Client: ticket.Client,
			Status: ticket.Status,
		},
	})
}

// afterMutation persists the session, records metrics and publishes event.
// Failures here are logged; the in-memory desk stays authoritative.
func (s *TicketService) afterMutation(ctx context.Context, action string, event events.Event) {
	s.saveMu.Lock()
	snap := s.tickets.Snapshot(ctx)
	if err := s.snapshots.Save(ctx, snap); err != nil {
		s.logger.Error("save desk snapshot", zap.String("action", action), zap.Error(err))
	}
	s.saveMu.Unlock()
	s.metrics.RecordAction(action, len(snap.Tickets))
	s.publishEvent(ctx, event)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
