package feedback

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventpulse/backend/internal/apperrors"
	"github.com/eventpulse/backend/internal/models"
)

// Repository handles feedback persistence in PostgreSQL. Feedback rows are
// insert-only; there is no update or delete.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a feedback repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new feedback entry. The caller supplies the creation timestamp.
func (r *Repository) Create(ctx context.Context, f *models.Feedback) error {
	const query = `INSERT INTO feedback (event_id, session_id, user_id, rating, comment, tags, anonymous, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.pool.QueryRow(ctx, query, f.EventID, f.SessionID, f.UserID, f.Rating, f.Comment, f.Tags, f.Anonymous, f.CreatedAt).
		Scan(&f.ID)
	if err != nil {
		return apperrors.Store("create feedback", err)
	}
	return nil
}

// ListByEvent returns all feedback for an event in storage order.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Feedback, error) {
	const query = `SELECT f.id, f.event_id, f.session_id, f.user_id, f.rating, f.comment, f.tags, f.anonymous, u.full_name, f.created_at
		FROM feedback f JOIN users u ON u.id = f.user_id
		WHERE f.event_id = $1`
	return r.list(ctx, query, eventID)
}

// ListBySession returns all feedback for a session in storage order.
func (r *Repository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Feedback, error) {
	const query = `SELECT f.id, f.event_id, f.session_id, f.user_id, f.rating, f.comment, f.tags, f.anonymous, u.full_name, f.created_at
		FROM feedback f JOIN users u ON u.id = f.user_id
		WHERE f.session_id = $1`
	return r.list(ctx, query, sessionID)
}

func (r *Repository) list(ctx context.Context, query string, arg any) ([]models.Feedback, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, apperrors.Store("list feedback", err)
	}
	defer rows.Close()

	var list []models.Feedback
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.EventID, &f.SessionID, &f.UserID, &f.Rating, &f.Comment, &f.Tags, &f.Anonymous, &f.AuthorName, &f.CreatedAt); err != nil {
			return nil, apperrors.Store("scan feedback", err)
		}
		list = append(list, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("list feedback", err)
	}
	return list, nil
}
