// Package feedback implements feedback collection and the on-demand
// aggregation engine: average rating, sentiment, tag frequency, rating
// histogram and the recent-feedback feed. All derived values are recomputed
// from the stored entries on every query; nothing is cached.
package feedback

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/eventpulse/backend/internal/apperrors"
	"github.com/eventpulse/backend/internal/models"
)

// TopTagsLimit caps the number of tags reported in stats.
const TopTagsLimit = 10

// Sentiment labels derived from the average rating.
const (
	SentimentVeryPositive = "Very Positive"
	SentimentPositive     = "Positive"
	SentimentNeutral      = "Neutral"
	SentimentNegative     = "Negative"
	SentimentNoData       = "No data"
)

// Store is the persistence contract the aggregator depends on.
type Store interface {
	Create(ctx context.Context, f *models.Feedback) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Feedback, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Feedback, error)
}

// TagCount is one entry of the top-tags ranking.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Stats holds the derived aggregate for a collection of feedback entries.
type Stats struct {
	Count         int        `json:"count"`
	AverageRating float64    `json:"average_rating"`
	Sentiment     string     `json:"sentiment"`
	TopTags       []TagCount `json:"top_tags"`
}

// Aggregator computes feedback statistics on demand from the store.
type Aggregator struct {
	store Store
	clock clockwork.Clock
}

// NewAggregator creates a feedback aggregator backed by the given store.
func NewAggregator(store Store, clock clockwork.Clock) *Aggregator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Aggregator{store: store, clock: clock}
}

// Submit records a new feedback entry. Fails with a validation error when the
// rating is out of range or an identifier is missing. Tags may be nil.
func (a *Aggregator) Submit(ctx context.Context, eventID, sessionID, authorID uuid.UUID, rating int, comment string, tags []string, anonymous bool) (*models.Feedback, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}
	if eventID == uuid.Nil || sessionID == uuid.Nil || authorID == uuid.Nil {
		return nil, apperrors.Validation("event, session and author are required")
	}
	if tags == nil {
		tags = []string{}
	}

	f := &models.Feedback{
		EventID:   eventID,
		SessionID: sessionID,
		UserID:    authorID,
		Rating:    rating,
		Comment:   comment,
		Tags:      tags,
		Anonymous: anonymous,
		CreatedAt: a.clock.Now().UTC(),
	}
	if err := a.store.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// StatsForEvent computes the aggregate over all feedback for an event.
func (a *Aggregator) StatsForEvent(ctx context.Context, eventID uuid.UUID) (Stats, error) {
	list, err := a.store.ListByEvent(ctx, eventID)
	if err != nil {
		return Stats{}, err
	}
	return Compute(list), nil
}

// StatsForSession computes the aggregate restricted to one session.
func (a *Aggregator) StatsForSession(ctx context.Context, sessionID uuid.UUID) (Stats, error) {
	list, err := a.store.ListBySession(ctx, sessionID)
	if err != nil {
		return Stats{}, err
	}
	return Compute(list), nil
}

// HistogramForEvent returns the rating distribution for an event.
func (a *Aggregator) HistogramForEvent(ctx context.Context, eventID uuid.UUID) (map[int]int, error) {
	list, err := a.store.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return Histogram(list), nil
}

// HistogramForSession returns the rating distribution for a session.
func (a *Aggregator) HistogramForSession(ctx context.Context, sessionID uuid.UUID) (map[int]int, error) {
	list, err := a.store.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return Histogram(list), nil
}

// RecentForEvent returns the newest feedback for an event, newest first,
// truncated to limit. A limit of zero returns an empty slice.
func (a *Aggregator) RecentForEvent(ctx context.Context, eventID uuid.UUID, limit int) ([]models.Feedback, error) {
	if limit < 0 {
		return nil, apperrors.Validation("limit must not be negative")
	}
	list, err := a.store.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return Recent(list, limit), nil
}

// ListForEvent returns the raw feedback entries for an event, newest first.
func (a *Aggregator) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]models.Feedback, error) {
	list, err := a.store.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return Recent(list, len(list)), nil
}

// Compute derives {count, average, sentiment, top tags} from a collection of
// feedback entries.
func Compute(list []models.Feedback) Stats {
	if len(list) == 0 {
		return Stats{Count: 0, AverageRating: 0, Sentiment: SentimentNoData, TopTags: []TagCount{}}
	}

	sum := 0
	for _, f := range list {
		sum += f.Rating
	}
	avg := float64(sum) / float64(len(list))

	return Stats{
		Count: len(list),
		// Rounded for display; the sentiment threshold sees the raw average.
		AverageRating: math.Round(avg*10) / 10,
		Sentiment:     sentiment(avg),
		TopTags:       TopTags(TagFrequency(list), TopTagsLimit),
	}
}

// sentiment maps an average rating to its label via fixed thresholds.
func sentiment(avg float64) string {
	switch {
	case avg >= 4.0:
		return SentimentVeryPositive
	case avg >= 3.5:
		return SentimentPositive
	case avg >= 2.5:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}

// TagFrequency counts every tag occurrence across all entries. An entry
// contributing multiple tags increments each tag's counter once.
func TagFrequency(list []models.Feedback) map[string]int {
	freq := make(map[string]int)
	for _, f := range list {
		for _, tag := range f.Tags {
			freq[tag]++
		}
	}
	return freq
}

// TopTags ranks tags by count descending, limited to n. Equal counts are
// ordered lexicographically so the result does not depend on map iteration.
func TopTags(freq map[string]int, n int) []TagCount {
	ranked := make([]TagCount, 0, len(freq))
	for tag, count := range freq {
		ranked = append(ranked, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Tag < ranked[j].Tag
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Histogram returns counts for every rating bucket 1..5. Missing buckets are
// zero-filled, never absent.
func Histogram(list []models.Feedback) map[int]int {
	hist := make(map[int]int, models.MaxRating)
	for r := models.MinRating; r <= models.MaxRating; r++ {
		hist[r] = 0
	}
	for _, f := range list {
		hist[f.Rating]++
	}
	return hist
}

// Recent sorts entries newest first and truncates to limit. Equal timestamps
// fall back to ID order for determinism.
func Recent(list []models.Feedback, limit int) []models.Feedback {
	out := make([]models.Feedback, len(list))
	copy(out, list)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit < len(out) {
		out = out[:limit]
	}
	return out
}
