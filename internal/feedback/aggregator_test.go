package feedback

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

// fakeStore is an in-memory Store for aggregator tests.
type fakeStore struct {
	mu      sync.Mutex
	entries []models.Feedback
}

func (s *fakeStore) Create(_ context.Context, f *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = uuid.New()
	s.entries = append(s.entries, *f)
	return nil
}

func (s *fakeStore) ListByEvent(_ context.Context, eventID uuid.UUID) ([]models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []models.Feedback
	for _, f := range s.entries {
		if f.EventID == eventID {
			list = append(list, f)
		}
	}
	return list, nil
}

func (s *fakeStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []models.Feedback
	for _, f := range s.entries {
		if f.SessionID == sessionID {
			list = append(list, f)
		}
	}
	return list, nil
}

func entry(rating int, tags ...string) models.Feedback {
	return models.Feedback{ID: uuid.New(), Rating: rating, Tags: tags}
}

func TestSubmitValidation(t *testing.T) {
	agg := NewAggregator(&fakeStore{}, clockwork.NewFakeClock())
	eventID, sessionID, userID := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name    string
		event   uuid.UUID
		session uuid.UUID
		author  uuid.UUID
		rating  int
	}{
		{"rating too low", eventID, sessionID, userID, 0},
		{"rating too high", eventID, sessionID, userID, 6},
		{"missing event", uuid.Nil, sessionID, userID, 3},
		{"missing session", eventID, uuid.Nil, userID, 3},
		{"missing author", eventID, sessionID, uuid.Nil, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agg.Submit(context.Background(), tt.event, tt.session, tt.author, tt.rating, "", nil, false)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		})
	}
}

func TestSubmitDefaults(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC))
	agg := NewAggregator(&fakeStore{}, clock)

	f, err := agg.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), 4, "", nil, false)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, f.ID)
	assert.Equal(t, "", f.Comment)
	assert.NotNil(t, f.Tags)
	assert.Empty(t, f.Tags)
	assert.Equal(t, clock.Now().UTC(), f.CreatedAt)
}

func TestSingleRatingStats(t *testing.T) {
	tests := []struct {
		rating        int
		wantSentiment string
	}{
		{1, SentimentNegative},
		{2, SentimentNegative},
		{3, SentimentNeutral},
		{4, SentimentVeryPositive},
		{5, SentimentVeryPositive},
	}
	for _, tt := range tests {
		store := &fakeStore{}
		agg := NewAggregator(store, clockwork.NewFakeClock())
		eventID := uuid.New()

		_, err := agg.Submit(context.Background(), eventID, uuid.New(), uuid.New(), tt.rating, "", nil, false)
		require.NoError(t, err)

		stats, err := agg.StatsForEvent(context.Background(), eventID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Count)
		assert.Equal(t, float64(tt.rating), stats.AverageRating)
		assert.Equal(t, tt.wantSentiment, stats.Sentiment, "rating %d", tt.rating)
	}
}

func TestSentimentThresholds(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    string
	}{
		{"avg 4.0 is very positive", []int{4, 4}, SentimentVeryPositive},
		{"avg 3.5 is positive", []int{3, 4}, SentimentPositive},
		{"avg just below 3.5 is neutral", []int{3, 3, 4}, SentimentNeutral},
		{"avg 2.5 is neutral", []int{2, 3}, SentimentNeutral},
		{"avg below 2.5 is negative", []int{2, 2, 3}, SentimentNegative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list []models.Feedback
			for _, r := range tt.ratings {
				list = append(list, entry(r))
			}
			assert.Equal(t, tt.want, Compute(list).Sentiment)
		})
	}
}

func TestAverageRounding(t *testing.T) {
	// 3+4+4 = 11/3 = 3.666..., displayed as 3.7 but classified as positive
	// from the raw average.
	stats := Compute([]models.Feedback{entry(3), entry(4), entry(4)})

	assert.Equal(t, 3.7, stats.AverageRating)
	assert.Equal(t, SentimentPositive, stats.Sentiment)
}

func TestEmptyStats(t *testing.T) {
	agg := NewAggregator(&fakeStore{}, clockwork.NewFakeClock())
	eventID := uuid.New()

	stats, err := agg.StatsForEvent(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, 0.0, stats.AverageRating)
	assert.Equal(t, SentimentNoData, stats.Sentiment)
	assert.Empty(t, stats.TopTags)

	hist, err := agg.HistogramForEvent(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, hist)
}

func TestHistogramBucketsAlwaysPresent(t *testing.T) {
	hist := Histogram([]models.Feedback{entry(5), entry(5), entry(3)})

	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 1, 4: 0, 5: 2}, hist)
}

func TestTagFrequency(t *testing.T) {
	list := []models.Feedback{
		entry(4, "engaging", "helpful"),
		entry(5, "engaging"),
	}

	assert.Equal(t, map[string]int{"engaging": 2, "helpful": 1}, TagFrequency(list))
}

func TestTopTagsDeterministicTieBreak(t *testing.T) {
	freq := map[string]int{"insightful": 2, "confusing": 1, "boring": 1, "engaging": 3}

	got := TopTags(freq, 3)

	assert.Equal(t, []TagCount{
		{Tag: "engaging", Count: 3},
		{Tag: "insightful", Count: 2},
		{Tag: "boring", Count: 1}, // ties resolve lexicographically
	}, got)
}

func TestRecent(t *testing.T) {
	base := time.Date(2025, 5, 15, 9, 0, 0, 0, time.UTC)
	a := entry(4)
	a.CreatedAt = base
	b := entry(5)
	b.CreatedAt = base.Add(time.Minute)
	c := entry(3)
	c.CreatedAt = base.Add(2 * time.Minute)

	got := Recent([]models.Feedback{a, b, c}, 2)

	require.Len(t, got, 2)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)

	assert.Empty(t, Recent([]models.Feedback{a, b, c}, 0))
}

func TestRecentForEventSessionScoping(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 5, 15, 9, 0, 0, 0, time.UTC))
	store := &fakeStore{}
	agg := NewAggregator(store, clock)
	eventID, s1, s2 := uuid.New(), uuid.New(), uuid.New()

	_, err := agg.Submit(context.Background(), eventID, s1, uuid.New(), 5, "great", []string{"engaging"}, false)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = agg.Submit(context.Background(), eventID, s2, uuid.New(), 2, "meh", nil, false)
	require.NoError(t, err)

	// Session stats only see their own entries.
	stats, err := agg.StatsForSession(context.Background(), s1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 5.0, stats.AverageRating)

	// Event feed spans sessions, newest first.
	recent, err := agg.RecentForEvent(context.Background(), eventID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, s2, recent[0].SessionID)
}
