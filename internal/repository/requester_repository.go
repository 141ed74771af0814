package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/queue-service/internal/domain"
)

// RequesterRepository encapsulates requester identity persistence.
type RequesterRepository interface {
	Create(ctx context.Context, requester *domain.Requester) error
	GetByNationalID(ctx context.Context, nationalID string) (*domain.Requester, error)
	SetPriority(ctx context.Context, nationalID string, priority bool) error
	Deactivate(ctx context.Context, nationalID string) error
}

type requesterRepository struct {
	pool *pgxpool.Pool
}

// NewRequesterRepository instantiates repository.
func NewRequesterRepository(pool *pgxpool.Pool) RequesterRepository {
	return &requesterRepository{pool: pool}
}

func (r *requesterRepository) Create(ctx context.Context, requester *domain.Requester) error {
	const query = `
        INSERT INTO requesters (national_id, first_name, last_name, email, priority, active)
        VALUES ($1,$2,$3,$4,$5,TRUE)
        RETURNING created_at`
	err := r.pool.QueryRow(ctx, query,
		requester.NationalID,
		requester.FirstName,
		requester.LastName,
		requester.Email,
		requester.Priority,
	).Scan(&requester.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	requester.Active = true
	return nil
}

func (r *requesterRepository) GetByNationalID(ctx context.Context, nationalID string) (*domain.Requester, error) {
	const query = `
        SELECT national_id, first_name, last_name, email, priority, active, created_at
        FROM requesters WHERE national_id=$1`
	var requester domain.Requester
	if err := r.pool.QueryRow(ctx, query, nationalID).Scan(
		&requester.NationalID,
		&requester.FirstName,
		&requester.LastName,
		&requester.Email,
		&requester.Priority,
		&requester.Active,
		&requester.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &requester, nil
}

func (r *requesterRepository) SetPriority(ctx context.Context, nationalID string, priority bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE requesters SET priority=$1 WHERE national_id=$2`, priority, nationalID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *requesterRepository) Deactivate(ctx context.Context, nationalID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE requesters SET active=FALSE WHERE national_id=$1`, nationalID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
