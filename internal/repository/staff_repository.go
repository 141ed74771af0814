package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/queue-service/internal/domain"
)

// StaffRepository encapsulates staff persistence.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        INSERT INTO staff_members (name, email, password_hash, role, active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		staff.Name,
		staff.Email,
		staff.PasswordHash,
		staff.Role,
		staff.Active,
	).Scan(&staff.ID, &staff.CreatedAt)
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active, created_at
        FROM staff_members WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active, created_at
        FROM staff_members WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *staffRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.StaffMember, error) {
	var staff domain.StaffMember
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Role,
		&staff.Active,
		&staff.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &staff, nil
}
