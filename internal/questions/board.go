// Package questions implements the live question board: submissions, upvoting,
// answered-marking and the ranked session view.
package questions

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/eventpulse/backend/internal/apperrors"
	"github.com/eventpulse/backend/internal/models"
)

// Store is the persistence contract the board depends on. The pgx Repository
// implements it; tests use in-memory fakes.
type Store interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Question, error)
	IncrementUpvotes(ctx context.Context, id uuid.UUID) (*models.Question, error)
	SetAnswered(ctx context.Context, id uuid.UUID) (*models.Question, error)
}

// Board maintains the audience question set for sessions. It holds no derived
// state: every ranked view is recomputed from the store's current contents.
type Board struct {
	store Store
	clock clockwork.Clock
}

// NewBoard creates a question board backed by the given store.
func NewBoard(store Store, clock clockwork.Clock) *Board {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Board{store: store, clock: clock}
}

// Submit records a new audience question. Fails with a validation error when
// the text is empty after trimming.
func (b *Board) Submit(ctx context.Context, eventID, sessionID, authorID uuid.UUID, text string, anonymous bool) (*models.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("question text must not be empty")
	}
	if eventID == uuid.Nil || sessionID == uuid.Nil || authorID == uuid.Nil {
		return nil, apperrors.Validation("event, session and author are required")
	}

	q := &models.Question{
		EventID:   eventID,
		SessionID: sessionID,
		UserID:    authorID,
		Content:   text,
		Anonymous: anonymous,
		CreatedAt: b.clock.Now().UTC(),
	}
	if err := b.store.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Upvote adds exactly one vote to the question. Repeat calls from the same
// viewer count again; there is no duplicate-vote detection.
func (b *Board) Upvote(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return b.store.IncrementUpvotes(ctx, id)
}

// MarkAnswered sets the answered flag. Only organizers may do this; marking an
// already answered question succeeds without changing anything.
func (b *Board) MarkAnswered(ctx context.Context, id uuid.UUID, role string) (*models.Question, error) {
	if role != string(models.RoleOrganizer) {
		return nil, apperrors.Authorization("organizer role required")
	}
	return b.store.SetAnswered(ctx, id)
}

// List returns the session's questions ranked for display: most upvotes first,
// ties broken by newest submission. Ranking is recomputed on every call since
// upvotes change between polls.
func (b *Board) List(ctx context.Context, sessionID uuid.UUID) ([]models.Question, error) {
	list, err := b.store.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	Rank(list)
	return list, nil
}

// Rank sorts questions in place by (upvotes desc, created_at desc). Equal
// timestamps fall back to ID order so the result is deterministic.
func Rank(list []models.Question) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Upvotes != b.Upvotes {
			return a.Upvotes > b.Upvotes
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
