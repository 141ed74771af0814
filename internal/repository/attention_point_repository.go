package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/queue-service/internal/domain"
)

// AttentionPointRepository reads the fleet roster. Availability flips are
// owned by the ticket repository's transactional transitions; this
// repository only creates and reads points.
type AttentionPointRepository interface {
	Create(ctx context.Context, point *domain.AttentionPoint) error
	GetByID(ctx context.Context, id int64) (*domain.AttentionPoint, error)
	List(ctx context.Context) ([]domain.AttentionPoint, error)
	NextAvailable(ctx context.Context) (*domain.AttentionPoint, error)
}

type attentionPointRepository struct {
	pool *pgxpool.Pool
}

// NewAttentionPointRepository instantiates repository.
func NewAttentionPointRepository(pool *pgxpool.Pool) AttentionPointRepository {
	return &attentionPointRepository{pool: pool}
}

func (r *attentionPointRepository) Create(ctx context.Context, point *domain.AttentionPoint) error {
	const query = `
        INSERT INTO attention_points (availability)
        VALUES (TRUE)
        RETURNING id`
	if err := r.pool.QueryRow(ctx, query).Scan(&point.ID); err != nil {
		return err
	}
	point.Availability = true
	point.CurrentTicketID = nil
	return nil
}

func (r *attentionPointRepository) GetByID(ctx context.Context, id int64) (*domain.AttentionPoint, error) {
	const query = `SELECT id, availability, current_ticket_id FROM attention_points WHERE id=$1`
	var point domain.AttentionPoint
	if err := r.pool.QueryRow(ctx, query, id).Scan(&point.ID, &point.Availability, &point.CurrentTicketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &point, nil
}

func (r *attentionPointRepository) List(ctx context.Context) ([]domain.AttentionPoint, error) {
	const query = `SELECT id, availability, current_ticket_id FROM attention_points ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPoints(rows)
}

// NextAvailable returns the free point with the lowest ID. The total
// order keeps per-point load figures stable across dashboards.
func (r *attentionPointRepository) NextAvailable(ctx context.Context) (*domain.AttentionPoint, error) {
	const query = `
        SELECT id, availability, current_ticket_id FROM attention_points
        WHERE availability=TRUE ORDER BY id LIMIT 1`
	var point domain.AttentionPoint
	if err := r.pool.QueryRow(ctx, query).Scan(&point.ID, &point.Availability, &point.CurrentTicketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoneAvailable
		}
		return nil, err
	}
	return &point, nil
}

func scanPoints(rows pgx.Rows) ([]domain.AttentionPoint, error) {
	var result []domain.AttentionPoint
	for rows.Next() {
		var point domain.AttentionPoint
		if err := rows.Scan(&point.ID, &point.Availability, &point.CurrentTicketID); err != nil {
			return nil, err
		}
		result = append(result, point)
	}
	return result, rows.Err()
}
