package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/repair-desk/internal/domain"
)

type postgresSnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSnapshotRepository stores the desk in desk_state and desk_tickets.
func NewPostgresSnapshotRepository(pool *pgxpool.Pool) SnapshotRepository {
	return &postgresSnapshotRepository{pool: pool}
}

func (r *postgresSnapshotRepository) Load(ctx context.Context) (domain.DeskSnapshot, bool, error) {
	var snap domain.DeskSnapshot
	err := r.pool.QueryRow(ctx, `SELECT last_seq FROM desk_state WHERE id=1`).Scan(&snap.LastSeq)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DeskSnapshot{}, false, nil
	}
	if err != nil {
		return domain.DeskSnapshot{}, false, err
	}

	const query = `
        SELECT code, client, description, priority, received_date, delivered_date,
               status, equipment_type, price::text
        FROM desk_tickets ORDER BY position`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return domain.DeskSnapshot{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t        domain.Ticket
			priority int
			price    string
		)
		if err := rows.Scan(
			&t.Code,
			&t.Client,
			&t.Description,
			&priority,
			&t.ReceivedDate,
			&t.DeliveredDate,
			&t.Status,
			&t.EquipmentType,
			&price,
		); err != nil {
			return domain.DeskSnapshot{}, false, err
		}
		t.Priority = domain.Priority(priority)
		t.Price, err = decimal.NewFromString(price)
		if err != nil {
			return domain.DeskSnapshot{}, false, fmt.Errorf("ticket %s price: %w", t.Code, err)
		}
		t.ReceivedDate = domain.DateOf(t.ReceivedDate)
		snap.Tickets = append(snap.Tickets, t)
	}
	if err := rows.Err(); err != nil {
		return domain.DeskSnapshot{}, false, err
	}
	return snap, true, nil
}

// Save rewrites the stored sequence in one transaction so positions always
// reflect the last applied sort.
func (r *postgresSnapshotRepository) Save(ctx context.Context, snap domain.DeskSnapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const upsertState = `
        INSERT INTO desk_state (id, last_seq, updated_at) VALUES (1, $1, $2)
        ON CONFLICT (id) DO UPDATE SET last_seq=EXCLUDED.last_seq, updated_at=EXCLUDED.updated_at`
	if _, err := tx.Exec(ctx, upsertState, snap.LastSeq, time.Now().UTC()); err != nil {
		return fmt.Errorf("save desk state: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM desk_tickets`); err != nil {
		return fmt.Errorf("clear desk tickets: %w", err)
	}

	const insert = `
        INSERT INTO desk_tickets (position, code, client, description, priority, received_date,
            delivered_date, status, equipment_type, price)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10::numeric)`
	batch := &pgx.Batch{}
	for i, t := range snap.Tickets {
		batch.Queue(insert,
			i,
			t.Code,
			t.Client,
			t.Description,
			int(t.Priority),
			t.ReceivedDate,
			t.DeliveredDate,
			string(t.Status),
			string(t.EquipmentType),
			t.Price.String(),
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert desk tickets: %w", err)
		}
	}
	return tx.Commit(ctx)
}
