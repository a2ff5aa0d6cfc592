package questions

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventpulse/backend/internal/middleware"
	"github.com/eventpulse/backend/internal/models"
	"github.com/eventpulse/backend/internal/realtime"
	"github.com/eventpulse/backend/pkg/response"
)

// CreateRequest is the body for POST /sessions/:id/questions.
type CreateRequest struct {
	EventID   uuid.UUID `json:"event_id" binding:"required"`
	Content   string    `json:"content" binding:"required"`
	Anonymous bool      `json:"anonymous"`
}

// View is the question shape returned to clients. The author identity is
// replaced with a generic label when the anonymous flag is set.
type View struct {
	ID         uuid.UUID  `json:"id"`
	EventID    uuid.UUID  `json:"event_id"`
	SessionID  uuid.UUID  `json:"session_id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	AuthorName string     `json:"author_name"`
	Content    string     `json:"content"`
	Upvotes    int        `json:"upvotes"`
	Answered   bool       `json:"answered"`
	Anonymous  bool       `json:"anonymous"`
	CreatedAt  string     `json:"created_at"`
}

// NewView masks the author identity for anonymous questions.
func NewView(q models.Question) View {
	v := View{
		ID:         q.ID,
		EventID:    q.EventID,
		SessionID:  q.SessionID,
		AuthorName: q.AuthorName,
		Content:    q.Content,
		Upvotes:    q.Upvotes,
		Answered:   q.Answered,
		Anonymous:  q.Anonymous,
		CreatedAt:  q.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if q.Anonymous {
		v.AuthorName = "Anonymous"
	} else {
		userID := q.UserID
		v.UserID = &userID
	}
	return v
}

// Handler handles question HTTP endpoints and realtime notifications.
type Handler struct {
	board *Board
	hub   *realtime.Hub
}

// NewHandler creates a questions handler.
func NewHandler(board *Board, hub *realtime.Hub) *Handler {
	return &Handler{board: board, hub: hub}
}

// Create handles POST /sessions/:id/questions (audience asks a question).
func (h *Handler) Create(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	q, err := h.board.Submit(c.Request.Context(), req.EventID, sessionID, userID, req.Content, req.Anonymous)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.hub.PublishToEventOnly(q.EventID, realtime.EventQuestionCreated, NewView(*q))
	response.Created(c, NewView(*q))
}

// ListBySession handles GET /sessions/:id/questions. Returns the ranked board:
// most upvoted first, newest first among ties.
func (h *Handler) ListBySession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}
	list, err := h.board.List(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	views := make([]View, 0, len(list))
	for _, q := range list {
		views = append(views, NewView(q))
	}
	response.OK(c, gin.H{"questions": views})
}

// Upvote handles POST /questions/:id/upvote. Every call counts one vote.
func (h *Handler) Upvote(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}

	q, err := h.board.Upvote(c.Request.Context(), questionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.hub.PublishToEventOnly(q.EventID, realtime.EventQuestionVotes, gin.H{"id": q.ID, "upvotes": q.Upvotes})
	response.OK(c, gin.H{"id": q.ID, "upvotes": q.Upvotes})
}

// Answer handles PATCH /questions/:id/answer (organizer marks question answered).
func (h *Handler) Answer(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	role, _ := c.MustGet(middleware.ContextUserRole).(string)

	q, err := h.board.MarkAnswered(c.Request.Context(), questionID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.hub.PublishToEventOnly(q.EventID, realtime.EventQuestionAnswered, gin.H{"id": q.ID, "answered": true})
	response.OK(c, gin.H{"id": q.ID, "answered": true})
}
