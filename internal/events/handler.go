package events

import (
	"crypto/rand"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventpulse/backend/internal/apperrors"
	"github.com/eventpulse/backend/internal/middleware"
	"github.com/eventpulse/backend/internal/models"
	"github.com/eventpulse/backend/pkg/response"
)

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date" binding:"required"`
	AccessCode  string    `json:"access_code"` // optional, generated when absent
}

// UpdateRequest is the body for PATCH /events/:id. Absent fields stay unchanged.
type UpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	Date        *time.Time `json:"date"`
	Active      *bool      `json:"active"`
}

// JoinRequest is the body for POST /events/join.
type JoinRequest struct {
	AccessCode string `json:"access_code" binding:"required"`
}

// CreateSessionRequest is the body for POST /events/:id/sessions.
type CreateSessionRequest struct {
	Title       string    `json:"title" binding:"required"`
	Speaker     string    `json:"speaker"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required"`
}

// Handler handles event and session HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /events (organizer only, enforced by route middleware).
func (h *Handler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	code := req.AccessCode
	if code == "" {
		var err error
		code, err = newAccessCode()
		if err != nil {
			response.Error(c, err)
			return
		}
	}

	e := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Date:        req.Date,
		OrganizerID: userID,
		AccessCode:  code,
		Active:      true,
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, e)
}

// List handles GET /events. Organizers see their own events with ?mine=true.
func (h *Handler) List(c *gin.Context) {
	var organizerID *uuid.UUID
	if c.Query("mine") == "true" {
		userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		organizerID = &userID
	}
	list, err := h.repo.List(c.Request.Context(), organizerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"events": list})
}

// GetByID handles GET /events/:id. The event is returned with its sessions.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	sessions, err := h.repo.ListSessions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	e.Sessions = sessions
	response.OK(c, e)
}

// Update handles PATCH /events/:id (organizer only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Title, req.Description, req.Location, req.Date, req.Active); err != nil {
		response.Error(c, err)
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// Join handles POST /events/join (attendee joins with an access code).
func (h *Handler) Join(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e, err := h.repo.GetByAccessCode(c.Request.Context(), req.AccessCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !e.Active {
		response.BadRequest(c, "event is not active")
		return
	}
	if err := h.repo.AddAttendee(c.Request.Context(), e.ID, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// CreateSession handles POST /events/:id/sessions (organizer only).
func (h *Handler) CreateSession(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		response.BadRequest(c, "session must end after it starts")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), eventID); err != nil {
		response.Error(c, err)
		return
	}

	s := &models.Session{
		EventID:     eventID,
		Title:       req.Title,
		Speaker:     req.Speaker,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Status:      models.SessionUpcoming,
	}
	if err := h.repo.CreateSession(c.Request.Context(), s); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, s)
}

// ListSessions handles GET /events/:id/sessions.
func (h *Handler) ListSessions(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.repo.ListSessions(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"sessions": list})
}

const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newAccessCode generates an 8-character join code.
func newAccessCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", apperrors.Internal("generate access code", err)
	}
	for i, b := range buf {
		buf[i] = accessCodeAlphabet[int(b)%len(accessCodeAlphabet)]
	}
	return string(buf), nil
}
