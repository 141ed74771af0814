package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/queue-service/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	RequesterID *string
	Statuses    []domain.TicketStatus
	OpenedFrom  *time.Time
	OpenedTo    *time.Time
	Limit       int
	Offset      int
}

const ticketColumns = `id, requester_id, priority, status, attention_point_id, opened_at, started_at, closed_at`

// TicketRepository owns all ticket mutation. Transitions that touch an
// attention point run as a single transaction, so binding or releasing a
// point is atomic with the status write. Conditional updates guard every
// transition; a lost race surfaces as ErrConflict.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	CreateAssigned(ctx context.Context, ticket *domain.Ticket, pointID int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Start(ctx context.Context, ticketID, pointID int64, startedAt time.Time) (*domain.Ticket, error)
	Close(ctx context.Context, ticketID int64, closedAt time.Time) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (requester_id, priority, status, opened_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		ticket.RequesterID,
		ticket.Priority,
		ticket.Status,
		ticket.OpenedAt,
	).Scan(&ticket.ID)
}

func (r *ticketRepository) CreateAssigned(ctx context.Context, ticket *domain.Ticket, pointID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
        INSERT INTO tickets (requester_id, priority, status, attention_point_id, opened_at, started_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	if err := tx.QueryRow(ctx, insert,
		ticket.RequesterID,
		ticket.Priority,
		ticket.Status,
		pointID,
		ticket.OpenedAt,
		ticket.StartedAt,
	).Scan(&ticket.ID); err != nil {
		return err
	}

	if err := occupyPoint(ctx, tx, pointID, ticket.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	ticket.AttentionPointID = &pointID
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.OpenedFrom != nil {
		args = append(args, *filter.OpenedFrom)
		clauses = append(clauses, fmt.Sprintf("opened_at >= $%d", len(args)))
	}
	if filter.OpenedTo != nil {
		args = append(args, *filter.OpenedTo)
		clauses = append(clauses, fmt.Sprintf("opened_at < $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY id`,
		ticketColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Start(ctx context.Context, ticketID, pointID int64, startedAt time.Time) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const update = `
        UPDATE tickets SET status=$1, attention_point_id=$2, started_at=$3
        WHERE id=$4 AND status=$5`
	cmd, err := tx.Exec(ctx, update,
		domain.TicketStatusInProgress, pointID, startedAt, ticketID, domain.TicketStatusOpen)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, r.raceOutcome(ctx, ticketID)
	}

	if err := occupyPoint(ctx, tx, pointID, ticketID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, ticketID)
}

func (r *ticketRepository) Close(ctx context.Context, ticketID int64, closedAt time.Time) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const update = `
        UPDATE tickets SET status=$1, closed_at=$2
        WHERE id=$3 AND status=$4
        RETURNING attention_point_id`
	var pointID *int64
	if err := tx.QueryRow(ctx, update,
		domain.TicketStatusClosed, closedAt, ticketID, domain.TicketStatusInProgress,
	).Scan(&pointID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.raceOutcome(ctx, ticketID)
		}
		return nil, err
	}

	if pointID != nil {
		const release = `UPDATE attention_points SET availability=TRUE, current_ticket_id=NULL WHERE id=$1`
		if _, err := tx.Exec(ctx, release, *pointID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, ticketID)
}

// raceOutcome distinguishes a missing ticket from a transition that lost
// a concurrent race.
func (r *ticketRepository) raceOutcome(ctx context.Context, ticketID int64) error {
	var status domain.TicketStatus
	err := r.pool.QueryRow(ctx, `SELECT status FROM tickets WHERE id=$1`, ticketID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrConflict
}

func occupyPoint(ctx context.Context, tx pgx.Tx, pointID, ticketID int64) error {
	const occupy = `
        UPDATE attention_points SET availability=FALSE, current_ticket_id=$1
        WHERE id=$2 AND availability=TRUE`
	cmd, err := tx.Exec(ctx, occupy, ticketID, pointID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPointUnavailable
	}
	return nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.RequesterID,
		&ticket.Priority,
		&ticket.Status,
		&ticket.AttentionPointID,
		&ticket.OpenedAt,
		&ticket.StartedAt,
		&ticket.ClosedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
