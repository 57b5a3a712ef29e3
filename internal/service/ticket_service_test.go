package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/repair-desk/internal/domain"
	"github.com/spec-kit/repair-desk/internal/events"
	"github.com/spec-kit/repair-desk/internal/observability"
	"github.com/spec-kit/repair-desk/internal/sorting"
	apperrors "github.com/spec-kit/repair-desk/pkg/util/errorutil"
)

var fixedNow = time.Date(2024, 8, 20, 16, 0, 0, 0, time.UTC)

type memorySnapshots struct {
	saved   []domain.DeskSnapshot
	loaded  *domain.DeskSnapshot
	saveErr error
}

func (m *memorySnapshots) Load(context.Context) (domain.DeskSnapshot, bool, error) {
	if m.loaded == nil {
		return domain.DeskSnapshot{}, false, nil
	}
	return *m.loaded, true, nil
}

func (m *memorySnapshots) Save(_ context.Context, snap domain.DeskSnapshot) error {
	m.saved = append(m.saved, snap)
	return m.saveErr
}

func newTestService(t *testing.T) (*TicketService, *memorySnapshots, *[]events.Event) {
	t.Helper()
	snaps := &memorySnapshots{}
	dispatcher := events.NewInMemoryDispatcher()
	var published []events.Event
	record := func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	}
	for _, et := range []events.EventType{events.EventTicketCreated, events.EventTicketsSorted, events.EventTicketCompleted, events.EventTicketDeleted} {
		dispatcher.Subscribe(et, record)
	}
	svc := NewTicketService(TicketDependencies{
		SnapshotRepo: snaps,
		Dispatcher:   dispatcher,
		Metrics:      observability.NewMetrics(),
		Now:          func() time.Time { return fixedNow },
	})
	return svc, snaps, &published
}

func create(t *testing.T, svc *TicketService, price int64) domain.Ticket {
	t.Helper()
	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Client:        "Carlos",
		Description:   "broken hinge",
		Priority:      domain.PriorityMedium,
		EquipmentType: domain.EquipmentLaptop,
		Price:         decimal.NewFromInt(price),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return ticket
}

func TestCreateDefaultsReceivedDateToToday(t *testing.T) {
	svc, snaps, published := newTestService(t)
	ticket := create(t, svc, 40)

	if ticket.Code != "TKT-001" {
		t.Fatalf("code = %s", ticket.Code)
	}
	if !ticket.ReceivedDate.Equal(domain.DateOf(fixedNow)) {
		t.Fatalf("received date = %v", ticket.ReceivedDate)
	}
	if len(snaps.saved) != 1 || len(snaps.saved[0].Tickets) != 1 {
		t.Fatalf("expected one snapshot with one ticket, got %+v", snaps.saved)
	}
	if len(*published) != 1 || (*published)[0].Type != events.EventTicketCreated || (*published)[0].ID == "" {
		t.Fatalf("unexpected events %+v", *published)
	}
}

func TestSortScenario(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	for _, p := range []int64{50, 10, 30} {
		create(t, svc, p)
	}

	sorted, err := svc.SortTickets(ctx, sorting.CriterionPrice, false)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	assertPrices(t, sorted, "10", "30", "50")

	sorted, err = svc.SortTickets(ctx, sorting.CriterionPrice, true)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	assertPrices(t, sorted, "50", "30", "10")
	assertPrices(t, svc.ListTickets(ctx), "50", "30", "10")
}

func assertPrices(t *testing.T, tickets []domain.Ticket, want ...string) {
	t.Helper()
	if len(tickets) != len(want) {
		t.Fatalf("got %d tickets, want %d", len(tickets), len(want))
	}
	for i := range want {
		if tickets[i].Price.String() != want[i] {
			t.Fatalf("position %d price %s, want %s", i, tickets[i].Price, want[i])
		}
	}
}

func TestEmptyCollection(t *testing.T) {
	svc, snaps, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SortTickets(ctx, sorting.CriterionPriority, false); !apperrors.HasCode(err, apperrors.CodeEmptyCollection) {
		t.Fatalf("sort on empty desk: %v", err)
	}
	if _, err := svc.FindTicket(ctx, "1"); !apperrors.HasCode(err, apperrors.CodeEmptyCollection) {
		t.Fatalf("find on empty desk: %v", err)
	}
	if _, err := svc.CompleteTicket(ctx, "TKT-001"); !apperrors.HasCode(err, apperrors.CodeEmptyCollection) {
		t.Fatalf("complete on empty desk: %v", err)
	}
	if _, err := svc.DeleteAt(ctx, 0); !apperrors.HasCode(err, apperrors.CodeEmptyCollection) {
		t.Fatalf("delete on empty desk: %v", err)
	}
	if len(snaps.saved) != 0 {
		t.Fatalf("failed actions must not persist anything")
	}
}

func TestFindCompleteDelete(t *testing.T) {
	svc, _, published := newTestService(t)
	ctx := context.Background()
	create(t, svc, 10)
	second := create(t, svc, 20)

	found, err := svc.FindTicket(ctx, "2")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Index != 1 || found.Ticket.Code != second.Code {
		t.Fatalf("found %+v", found)
	}
	if _, err := svc.FindTicket(ctx, "abc"); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := svc.FindTicket(ctx, "99"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	done, err := svc.CompleteAt(ctx, found.Index)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != domain.TicketStatusCompleted || done.DeliveredDate == nil {
		t.Fatalf("not completed: %+v", done)
	}

	removed, err := svc.DeleteAt(ctx, found.Index)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed.Code != second.Code {
		t.Fatalf("removed %s", removed.Code)
	}
	if got := len(svc.ListTickets(ctx)); got != 1 {
		t.Fatalf("len = %d", got)
	}

	last := (*published)[len(*published)-1]
	if last.Type != events.EventTicketDeleted || last.TicketCode != second.Code {
		t.Fatalf("last event %+v", last)
	}
}

func TestCodeOperationsResolveAfterSort(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	create(t, svc, 30)
	create(t, svc, 20)
	create(t, svc, 10)

	found, err := svc.FindTicket(ctx, "1")
	if err != nil || found.Index != 0 {
		t.Fatalf("find before sort: %+v %v", found, err)
	}
	if _, err := svc.SortTickets(ctx, sorting.CriterionPrice, false); err != nil {
		t.Fatal(err)
	}

	// The index found earlier is stale; the code still points at the right ticket.
	done, err := svc.CompleteTicket(ctx, "TKT-001")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Code != "TKT-001" || !done.Price.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("completed wrong ticket %+v", done)
	}
	if _, err := svc.DeleteTicket(ctx, "TKT-001"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.DeleteTicket(ctx, "TKT-001"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSnapshotFailureDoesNotFailAction(t *testing.T) {
	svc, snaps, _ := newTestService(t)
	snaps.saveErr = errors.New("redis down")
	ticket := create(t, svc, 10)
	if ticket.Code != "TKT-001" {
		t.Fatalf("code = %s", ticket.Code)
	}
}

func TestRestore(t *testing.T) {
	svc, snaps, _ := newTestService(t)
	snaps.loaded = &domain.DeskSnapshot{
		LastSeq: 3,
		Tickets: []domain.Ticket{{Code: "TKT-003", Priority: domain.PriorityLow, Price: decimal.NewFromInt(5)}},
	}
	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	ticket := create(t, svc, 1)
	if ticket.Code != "TKT-004" {
		t.Fatalf("code after restore = %s", ticket.Code)
	}
}

func TestSortRejectsUnknownCriterion(t *testing.T) {
	svc, _, _ := newTestService(t)
	create(t, svc, 1)
	if _, err := svc.SortTickets(context.Background(), "colour", false); !apperrors.HasCode(err, apperrors.CodeValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// slowSnapshots blocks the first Save until release is closed.
type slowSnapshots struct {
	mu      sync.Mutex
	calls   int
	latest  domain.DeskSnapshot
	entered chan struct{}
	release chan struct{}
}

func (s *slowSnapshots) Load(context.Context) (domain.DeskSnapshot, bool, error) {
	return domain.DeskSnapshot{}, false, nil
}

func (s *slowSnapshots) Save(_ context.Context, snap domain.DeskSnapshot) error {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()
	if first {
		close(s.entered)
		<-s.release
	}
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
	return nil
}

func TestConcurrentSavesKeepNewestSnapshot(t *testing.T) {
	snaps := &slowSnapshots{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewTicketService(TicketDependencies{
		SnapshotRepo: snaps,
		Now:          func() time.Time { return fixedNow },
	})

	createAsync := func(price int64) <-chan error {
		done := make(chan error, 1)
		go func() {
			_, err := svc.CreateTicket(context.Background(), TicketCreateInput{
				Client:        "Carlos",
				Priority:      domain.PriorityMedium,
				EquipmentType: domain.EquipmentLaptop,
				Price:         decimal.NewFromInt(price),
			})
			done <- err
		}()
		return done
	}

	first := createAsync(10)
	<-snaps.entered
	second := createAsync(20)

	// Give the second create time to reach its save while the first is still writing.
	time.Sleep(50 * time.Millisecond)
	close(snaps.release)
	for _, done := range []<-chan error{first, second} {
		if err := <-done; err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	snaps.mu.Lock()
	defer snaps.mu.Unlock()
	if snaps.latest.LastSeq != 2 || len(snaps.latest.Tickets) != 2 {
		t.Fatalf("stored snapshot is stale: last_seq=%d tickets=%d", snaps.latest.LastSeq, len(snaps.latest.Tickets))
	}
}
