package feedback

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventpulse/backend/internal/middleware"
	"github.com/eventpulse/backend/internal/models"
	"github.com/eventpulse/backend/internal/realtime"
	"github.com/eventpulse/backend/pkg/queue"
	"github.com/eventpulse/backend/pkg/response"
)

// DefaultRecentLimit is the recent-feedback feed size when the client does not ask for one.
const DefaultRecentLimit = 5

// CreateRequest is the body for POST /sessions/:id/feedback.
type CreateRequest struct {
	EventID   uuid.UUID `json:"event_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required"`
	Comment   string    `json:"comment"`
	Tags      []string  `json:"tags"`
	Anonymous bool      `json:"anonymous"`
}

// View is the feedback shape returned to clients, with the author identity
// replaced by a generic label when the anonymous flag is set.
type View struct {
	ID         uuid.UUID  `json:"id"`
	EventID    uuid.UUID  `json:"event_id"`
	SessionID  uuid.UUID  `json:"session_id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	AuthorName string     `json:"author_name"`
	Rating     int        `json:"rating"`
	Comment    string     `json:"comment"`
	Tags       []string   `json:"tags"`
	Anonymous  bool       `json:"anonymous"`
	CreatedAt  string     `json:"created_at"`
}

// NewView masks the author identity for anonymous feedback.
func NewView(f models.Feedback) View {
	v := View{
		ID:         f.ID,
		EventID:    f.EventID,
		SessionID:  f.SessionID,
		AuthorName: f.AuthorName,
		Rating:     f.Rating,
		Comment:    f.Comment,
		Tags:       f.Tags,
		Anonymous:  f.Anonymous,
		CreatedAt:  f.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if f.Anonymous {
		v.AuthorName = "Anonymous"
	} else {
		userID := f.UserID
		v.UserID = &userID
	}
	return v
}

// Handler handles feedback HTTP endpoints.
type Handler struct {
	agg    *Aggregator
	hub    *realtime.Hub
	jobs   *queue.Queue
	logger *zap.Logger
}

// NewHandler creates a feedback handler. jobs may be nil when no worker runs.
func NewHandler(agg *Aggregator, hub *realtime.Hub, jobs *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{agg: agg, hub: hub, jobs: jobs, logger: logger}
}

// Create handles POST /sessions/:id/feedback (attendee submits feedback).
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

	f, err := h.agg.Submit(c.Request.Context(), req.EventID, sessionID, userID, req.Rating, req.Comment, req.Tags, req.Anonymous)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.hub.PublishToEventOnly(f.EventID, realtime.EventFeedbackCreated, NewView(*f))
	if h.jobs != nil {
		if err := h.jobs.EnqueueStatsDigest(c.Request.Context(), queue.StatsDigestPayload{EventID: f.EventID}); err != nil {
			h.logger.Warn("enqueue stats digest", zap.Error(err))
		}
	}
	response.Created(c, NewView(*f))
}

// EventStats handles GET /events/:id/stats.
func (h *Handler) EventStats(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	stats, err := h.agg.StatsForEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// SessionStats handles GET /sessions/:id/stats.
func (h *Handler) SessionStats(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}
	stats, err := h.agg.StatsForSession(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// EventHistogram handles GET /events/:id/histogram. All five rating
// buckets are always present.
func (h *Handler) EventHistogram(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	hist, err := h.agg.HistogramForEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"histogram": hist})
}

// SessionHistogram handles GET /sessions/:id/histogram.
func (h *Handler) SessionHistogram(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}
	hist, err := h.agg.HistogramForSession(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"histogram": hist})
}

// Recent handles GET /events/:id/feedback/recent?limit=N.
func (h *Handler) Recent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	limit := DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	list, err := h.agg.RecentForEvent(c.Request.Context(), eventID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	views := make([]View, 0, len(list))
	for _, f := range list {
		views = append(views, NewView(f))
	}
	response.OK(c, gin.H{"feedback": views})
}

// ListByEvent handles GET /events/:id/feedback (organizer view, newest first).
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.agg.ListForEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	views := make([]View, 0, len(list))
	for _, f := range list {
		views = append(views, NewView(f))
	}
	response.OK(c, gin.H{"feedback": views})
}
