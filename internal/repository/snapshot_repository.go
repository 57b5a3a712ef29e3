package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/repair-desk/internal/domain"
)

// SnapshotRepository persists the whole desk session.
type SnapshotRepository interface {
	// Load returns false when nothing has been saved yet.
	Load(ctx context.Context) (domain.DeskSnapshot, bool, error)
	Save(ctx context.Context, snap domain.DeskSnapshot) error
}

type noopSnapshotRepository struct{}

// NewNoopSnapshotRepository keeps the desk volatile.
func NewNoopSnapshotRepository() SnapshotRepository {
	return noopSnapshotRepository{}
}

func (noopSnapshotRepository) Load(context.Context) (domain.DeskSnapshot, bool, error) {
	return domain.DeskSnapshot{}, false, nil
}

func (noopSnapshotRepository) Save(context.Context, domain.DeskSnapshot) error {
	return nil
}

type snapshotRecord struct {
	LastSeq int            `json:"last_seq"`
	Tickets []ticketRecord `json:"tickets"`
}

type ticketRecord struct {
	Code          string  `json:"code"`
	Client        string  `json:"client"`
	Description   string  `json:"description"`
	Priority      int     `json:"priority"`
	ReceivedDate  string  `json:"received_date"`
	DeliveredDate *string `json:"delivered_date,omitempty"`
	Status        string  `json:"status"`
	EquipmentType string  `json:"equipment_type"`
	Price         string  `json:"price"`
}

func encodeSnapshot(snap domain.DeskSnapshot) ([]byte, error) {
	rec := snapshotRecord{LastSeq: snap.LastSeq, Tickets: make([]ticketRecord, 0, len(snap.Tickets))}
	for _, t := range snap.Tickets {
		tr := ticketRecord{
			Code:          t.Code,
			Client:        t.Client,
			Description:   t.Description,
			Priority:      int(t.Priority),
			ReceivedDate:  t.ReceivedDate.Format(domain.DateLayout),
			Status:        string(t.Status),
			EquipmentType: string(t.EquipmentType),
			Price:         t.Price.String(),
		}
		if t.DeliveredDate != nil {
			d := t.DeliveredDate.Format(domain.DateLayout)
			tr.DeliveredDate = &d
		}
		rec.Tickets = append(rec.Tickets, tr)
	}
	return json.Marshal(rec)
}

func decodeSnapshot(data []byte) (domain.DeskSnapshot, error) {
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.DeskSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	snap := domain.DeskSnapshot{LastSeq: rec.LastSeq, Tickets: make([]domain.Ticket, 0, len(rec.Tickets))}
	for _, tr := range rec.Tickets {
		received, err := time.Parse(domain.DateLayout, tr.ReceivedDate)
		if err != nil {
			return domain.DeskSnapshot{}, fmt.Errorf("ticket %s received_date: %w", tr.Code, err)
		}
		price, err := decimal.NewFromString(tr.Price)
		if err != nil {
			return domain.DeskSnapshot{}, fmt.Errorf("ticket %s price: %w", tr.Code, err)
		}
		t := domain.Ticket{
			Code:          tr.Code,
			Client:        tr.Client,
			Description:   tr.Description,
			Priority:      domain.Priority(tr.Priority),
			ReceivedDate:  received,
			Status:        domain.TicketStatus(tr.Status),
			EquipmentType: domain.EquipmentType(tr.EquipmentType),
			Price:         price,
		}
		if tr.DeliveredDate != nil {
			delivered, err := time.Parse(domain.DateLayout, *tr.DeliveredDate)
			if err != nil {
				return domain.DeskSnapshot{}, fmt.Errorf("ticket %s delivered_date: %w", tr.Code, err)
			}
			t.DeliveredDate = &delivered
		}
		snap.Tickets = append(snap.Tickets, t)
	}
	return snap, nil
}
