package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/queue-service/internal/domain"
)

// SnapshotRepository provides consistent point-in-time reads of the
// ticket population, fleet and requesters for analytics and pollers.
type SnapshotRepository interface {
	Read(ctx context.Context) (*domain.StoreSnapshot, error)
}

type snapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository instantiates repository.
func NewSnapshotRepository(pool *pgxpool.Pool) SnapshotRepository {
	return &snapshotRepository{pool: pool}
}

// Read loads tickets, points and requesters inside one repeatable-read
// read-only transaction, so occupancy flags and ticket statuses cannot
// disagree within the returned snapshot.
func (r *snapshotRepository) Read(ctx context.Context) (*domain.StoreSnapshot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	snapshot := &domain.StoreSnapshot{TakenAt: time.Now()}

	ticketQuery := fmt.Sprintf(`SELECT %s FROM tickets ORDER BY id`, ticketColumns)
	rows, err := tx.Query(ctx, ticketQuery)
	if err != nil {
		return nil, err
	}
	snapshot.Tickets, err = scanTickets(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `SELECT id, availability, current_ticket_id FROM attention_points ORDER BY id`)
	if err != nil {
		return nil, err
	}
	snapshot.Points, err = scanPoints(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `SELECT national_id, first_name, last_name, email, priority, active, created_at FROM requesters ORDER BY national_id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var requester domain.Requester
		if err := rows.Scan(
			&requester.NationalID,
			&requester.FirstName,
			&requester.LastName,
			&requester.Email,
			&requester.Priority,
			&requester.Active,
			&requester.CreatedAt,
		); err != nil {
			rows.Close()
			return nil, err
		}
		snapshot.Requesters = append(snapshot.Requesters, requester)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return snapshot, nil
}
