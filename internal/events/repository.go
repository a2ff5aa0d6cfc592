package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventpulse/backend/internal/apperrors"
	"github.com/eventpulse/backend/internal/models"
)

// Repository handles event and session persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (title, description, location, date, organizer_id, access_code, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, e.Title, e.Description, e.Location, e.Date, e.OrganizerID, e.AccessCode, e.Active).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return apperrors.Store("create event", err)
	}
	return nil
}

// GetByID returns an event by ID, without sessions.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT id, title, description, location, date, organizer_id, access_code, active, created_at, updated_at
		FROM events WHERE id = $1`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.Date, &e.OrganizerID, &e.AccessCode, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("event not found")
		}
		return nil, apperrors.Store("get event", err)
	}
	return &e, nil
}

// GetByAccessCode returns an event by its join code.
func (r *Repository) GetByAccessCode(ctx context.Context, code string) (*models.Event, error) {
	const q = `SELECT id, title, description, location, date, organizer_id, access_code, active, created_at, updated_at
		FROM events WHERE access_code = $1`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, code).
		Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.Date, &e.OrganizerID, &e.AccessCode, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("event not found")
		}
		return nil, apperrors.Store("get event by access code", err)
	}
	return &e, nil
}

// List returns all events, optionally filtered by organizer.
func (r *Repository) List(ctx context.Context, organizerID *uuid.UUID) ([]models.Event, error) {
	base := `SELECT id, title, description, location, date, organizer_id, access_code, active, created_at, updated_at FROM events`
	var args []any
	if organizerID != nil {
		base += ` WHERE organizer_id = $1`
		args = append(args, *organizerID)
	}
	rows, err := r.pool.Query(ctx, base+` ORDER BY date DESC`, args...)
	if err != nil {
		return nil, apperrors.Store("list events", err)
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.Date, &e.OrganizerID, &e.AccessCode, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, apperrors.Store("scan event", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("list events", err)
	}
	return list, nil
}

// Update applies a partial patch to an event.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, description, location *string, date *time.Time, active *bool) error {
	const q = `UPDATE events SET
		title = COALESCE($1, title),
		description = COALESCE($2, description),
		location = COALESCE($3, location),
		date = COALESCE($4, date),
		active = COALESCE($5, active),
		updated_at = NOW()
		WHERE id = $6`
	tag, err := r.pool.Exec(ctx, q, title, description, location, date, active, id)
	if err != nil {
		return apperrors.Store("update event", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("event not found")
	}
	return nil
}

// AddAttendee registers a user for an event. Joining twice is a no-op.
func (r *Repository) AddAttendee(ctx context.Context, eventID, userID uuid.UUID) error {
	const q = `INSERT INTO event_attendees (event_id, user_id) VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING`
	if _, err := r.pool.Exec(ctx, q, eventID, userID); err != nil {
		return apperrors.Store("add attendee", err)
	}
	return nil
}

// CreateSession inserts a new session under an event.
func (r *Repository) CreateSession(ctx context.Context, s *models.Session) error {
	const q = `INSERT INTO sessions (event_id, title, speaker, description, starts_at, ends_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, s.EventID, s.Title, s.Speaker, s.Description, s.StartsAt, s.EndsAt, string(s.Status)).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return apperrors.Store("create session", err)
	}
	return nil
}

// GetSession returns a session by ID.
func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	const q = `SELECT id, event_id, title, speaker, description, starts_at, ends_at, status, created_at
		FROM sessions WHERE id = $1`
	var s models.Session
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&s.ID, &s.EventID, &s.Title, &s.Speaker, &s.Description, &s.StartsAt, &s.EndsAt, &s.Status, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("session not found")
		}
		return nil, apperrors.Store("get session", err)
	}
	return &s, nil
}

// ListSessions returns all sessions for an event in start order.
func (r *Repository) ListSessions(ctx context.Context, eventID uuid.UUID) ([]models.Session, error) {
	const q = `SELECT id, event_id, title, speaker, description, starts_at, ends_at, status, created_at
		FROM sessions WHERE event_id = $1 ORDER BY starts_at`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, apperrors.Store("list sessions", err)
	}
	defer rows.Close()

	var list []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.EventID, &s.Title, &s.Speaker, &s.Description, &s.StartsAt, &s.EndsAt, &s.Status, &s.CreatedAt); err != nil {
			return nil, apperrors.Store("scan session", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store("list sessions", err)
	}
	return list, nil
}
