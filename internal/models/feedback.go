package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating bounds for feedback submissions.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback represents one attendee feedback entry for a session.
// Entries are immutable once stored.
type Feedback struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"event_id"`
	SessionID  uuid.UUID `json:"session_id"`
	UserID     uuid.UUID `json:"user_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Tags       []string  `json:"tags"`
	Anonymous  bool      `json:"anonymous"`
	AuthorName string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
