package models

import (
	"time"

	"github.com/google/uuid"
)

// Question represents an audience question asked during a session.
// Upvotes only grow, and answered never reverts to false once set.
type Question struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"event_id"`
	SessionID  uuid.UUID `json:"session_id"`
	UserID     uuid.UUID `json:"user_id"`
	Content    string    `json:"content"`
	Upvotes    int       `json:"upvotes"`
	Answered   bool      `json:"answered"`
	Anonymous  bool      `json:"anonymous"`
	AuthorName string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
