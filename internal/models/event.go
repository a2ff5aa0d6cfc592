package models

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a scheduled event attendees can join with an access code.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	OrganizerID uuid.UUID `json:"organizer_id"`
	AccessCode  string    `json:"access_code"`
	Active      bool      `json:"active"`
	Sessions    []Session `json:"sessions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
