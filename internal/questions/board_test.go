package questions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventpulse/backend/internal/apperrors"
	"github.com/eventpulse/backend/internal/models"
)

// fakeStore is an in-memory Store for board tests.
type fakeStore struct {
	mu        sync.Mutex
	questions map[uuid.UUID]*models.Question
}

func newFakeStore() *fakeStore {
	return &fakeStore{questions: make(map[uuid.UUID]*models.Question)}
}

func (s *fakeStore) Create(_ context.Context, q *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = uuid.New()
	cp := *q
	s.questions[q.ID] = &cp
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, apperrors.NotFound("question not found")
	}
	cp := *q
	return &cp, nil
}

func (s *fakeStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []models.Question
	for _, q := range s.questions {
		if q.SessionID == sessionID {
			list = append(list, *q)
		}
	}
	return list, nil
}

func (s *fakeStore) IncrementUpvotes(_ context.Context, id uuid.UUID) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, apperrors.NotFound("question not found")
	}
	q.Upvotes++
	cp := *q
	return &cp, nil
}

func (s *fakeStore) SetAnswered(_ context.Context, id uuid.UUID) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, apperrors.NotFound("question not found")
	}
	q.Answered = true
	cp := *q
	return &cp, nil
}

func TestSubmit(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 5, 15, 9, 0, 0, 0, time.UTC))
	board := NewBoard(newFakeStore(), clock)
	eventID, sessionID, userID := uuid.New(), uuid.New(), uuid.New()

	q, err := board.Submit(context.Background(), eventID, sessionID, userID, "  How does this scale?  ", true)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, q.ID)
	assert.Equal(t, "How does this scale?", q.Content)
	assert.Equal(t, 0, q.Upvotes)
	assert.False(t, q.Answered)
	assert.True(t, q.Anonymous)
	assert.Equal(t, clock.Now().UTC(), q.CreatedAt)
}

func TestSubmitEmptyText(t *testing.T) {
	board := NewBoard(newFakeStore(), clockwork.NewFakeClock())

	_, err := board.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), "   \t ", false)

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestSubmitMissingIdentifiers(t *testing.T) {
	board := NewBoard(newFakeStore(), clockwork.NewFakeClock())

	_, err := board.Submit(context.Background(), uuid.Nil, uuid.New(), uuid.New(), "valid question", false)

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestUpvoteMonotonic(t *testing.T) {
	store := newFakeStore()
	board := NewBoard(store, clockwork.NewFakeClock())
	q, err := board.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), "why?", false)
	require.NoError(t, err)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := board.Upvote(context.Background(), q.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.Upvotes)
}

func TestUpvoteUnknownQuestion(t *testing.T) {
	board := NewBoard(newFakeStore(), clockwork.NewFakeClock())

	_, err := board.Upvote(context.Background(), uuid.New())

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestMarkAnswered(t *testing.T) {
	board := NewBoard(newFakeStore(), clockwork.NewFakeClock())
	q, err := board.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), "when?", false)
	require.NoError(t, err)

	// Second organizer call is a no-op, not an error.
	for i := 0; i < 2; i++ {
		got, err := board.MarkAnswered(context.Background(), q.ID, "organizer")
		require.NoError(t, err)
		assert.True(t, got.Answered)
	}
}

func TestMarkAnsweredRequiresOrganizer(t *testing.T) {
	store := newFakeStore()
	board := NewBoard(store, clockwork.NewFakeClock())
	q, err := board.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), "who?", false)
	require.NoError(t, err)

	for _, role := range []string{"attendee", "", "admin"} {
		_, err := board.MarkAnswered(context.Background(), q.ID, role)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))
	}

	got, err := store.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.False(t, got.Answered, "denied calls must not change state")
}

func TestListRanking(t *testing.T) {
	store := newFakeStore()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 5, 15, 9, 0, 0, 0, time.UTC))
	board := NewBoard(store, clock)
	eventID, sessionID := uuid.New(), uuid.New()

	submit := func(text string) *models.Question {
		q, err := board.Submit(context.Background(), eventID, sessionID, uuid.New(), text, false)
		require.NoError(t, err)
		clock.Advance(time.Minute)
		return q
	}
	upvote := func(q *models.Question, n int) {
		for i := 0; i < n; i++ {
			_, err := board.Upvote(context.Background(), q.ID)
			require.NoError(t, err)
		}
	}

	q1 := submit("first, five votes")
	q2 := submit("second, five votes")
	q3 := submit("third, three votes")
	upvote(q1, 5)
	upvote(q2, 5)
	upvote(q3, 3)

	list, err := board.List(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Among tied vote counts the newer question wins.
	assert.Equal(t, q2.ID, list[0].ID)
	assert.Equal(t, q1.ID, list[1].ID)
	assert.Equal(t, q3.ID, list[2].ID)
}

func TestListRankingRecomputed(t *testing.T) {
	store := newFakeStore()
	board := NewBoard(store, clockwork.NewFakeClock())
	eventID, sessionID := uuid.New(), uuid.New()

	qa, err := board.Submit(context.Background(), eventID, sessionID, uuid.New(), "a", false)
	require.NoError(t, err)
	qb, err := board.Submit(context.Background(), eventID, sessionID, uuid.New(), "b", false)
	require.NoError(t, err)

	_, err = board.Upvote(context.Background(), qa.ID)
	require.NoError(t, err)

	list, err := board.List(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, qa.ID, list[0].ID)

	// Votes landing between polls reorder the next view.
	_, err = board.Upvote(context.Background(), qb.ID)
	require.NoError(t, err)
	_, err = board.Upvote(context.Background(), qb.ID)
	require.NoError(t, err)

	list, err = board.List(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, qb.ID, list[0].ID)
}
