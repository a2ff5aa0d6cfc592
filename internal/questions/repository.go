package questions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventpulse/backend/internal/apperrors"
	"github.com/eventpulse/backend/internal/models"
)

// Repository handles question persistence in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a questions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new question. The caller supplies the creation timestamp.
func (r *Repository) Create(ctx context.Context, q *models.Question) error {
	const query = `INSERT INTO questions (event_id, session_id, user_id, content, anonymous, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, upvotes, answered`
	err := r.pool.QueryRow(ctx, query, q.EventID, q.SessionID, q.UserID, q.Content, q.Anonymous, q.CreatedAt).
		Scan(&q.ID, &q.Upvotes, &q.Answered)
	if err != nil {
		return apperrors.Store("create question", err)
	}
	return nil
}

// GetByID returns a question by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	const query = `SELECT q.id, q.event_id, q.session_id, q.user_id, q.content, q.upvotes, q.answered, q.anonymous, u.full_name, q.created_at
		FROM questions q JOIN users u ON u.id = q.user_id
		WHERE q.id = $1`
	var q models.Question
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&q.ID, &q.EventID, &q.SessionID, &q.UserID, &q.Content, &q.Upvotes, &q.Answered, &q.Anonymous, &q.AuthorName, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("question not found")
		}
		return nil, apperrors.Store("get question", err)
	}
	return &q, nil
}

// ListBySession returns all questions for a session in storage order.
// Ranking is applied by the board, not here.
func (r *Repository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Question, error) {
	const query = `SELECT q.id, q.event_id, q.session_id, q.user_id, q.content, q.upvotes, q.answered, q.anonymous, u.full_name, q.created_at
		FROM questions q JOIN users u ON u.id = q.user_id
		WHERE q.session_id = $1`
	return r.list(ctx, query, sessionID)
}

// ListByEvent returns all questions for an event in storage order.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Question, error) {
	const query = `SELECT q.id, q.event_id, q.session_id, q.user_id, q.content, q.upvotes, q.answered, q.anonymous, u.full_name, q.created_at
		FROM questions q JOIN users u ON u.id = q.user_id
		WHERE q.event_id = $1`
	return r.list(ctx, query, eventID)
}

func (r *Repository) list(ctx context.Context, query string, arg any) ([]models.Question, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, apperrors.Store("list questions", err)
	}
	defer rows.Close()

	var list []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.EventID, &q.SessionID, &q.UserID, &q.Content, &q.Upvotes, &q.Answered, &q.Anonymous, &q.AuthorName, &q.CreatedAt); err != nil {
			return nil, apperrors.Store("scan question", err)
		}
		list = append(list, q)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("list questions", err)
	}
	return list, nil
}

// IncrementUpvotes atomically adds one upvote and returns the updated question.
// Concurrent increments never lose votes.
func (r *Repository) IncrementUpvotes(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	const query = `UPDATE questions SET upvotes = upvotes + 1 WHERE id = $1
		RETURNING id, event_id, session_id, user_id, content, upvotes, answered, anonymous, created_at`
	var q models.Question
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&q.ID, &q.EventID, &q.SessionID, &q.UserID, &q.Content, &q.Upvotes, &q.Answered, &q.Anonymous, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("question not found")
		}
		return nil, apperrors.Store("upvote question", err)
	}
	return &q, nil
}

// SetAnswered marks a question as answered and returns it. Setting an already
// answered question is a no-op.
func (r *Repository) SetAnswered(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	const query = `UPDATE questions SET answered = TRUE WHERE id = $1
		RETURNING id, event_id, session_id, user_id, content, upvotes, answered, anonymous, created_at`
	var q models.Question
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&q.ID, &q.EventID, &q.SessionID, &q.UserID, &q.Content, &q.Upvotes, &q.Answered, &q.Anonymous, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("question not found")
		}
		return nil, apperrors.Store("mark question answered", err)
	}
	return &q, nil
}
