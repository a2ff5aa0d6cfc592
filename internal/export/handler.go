package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventpulse/backend/internal/feedback"
	"github.com/eventpulse/backend/pkg/response"
	"github.com/eventpulse/backend/pkg/storage"
)

// Handler serves organizer CSV exports of event feedback.
type Handler struct {
	agg    *feedback.Aggregator
	s3     *storage.S3 // nil when exports archival is not configured
	logger *zap.Logger
}

// NewHandler creates an export handler. s3 may be nil.
func NewHandler(agg *feedback.Aggregator, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{agg: agg, s3: s3, logger: logger}
}

// Download handles GET /events/:id/export (organizer only, enforced by route middleware).
// Responds with the CSV inline. When S3 is configured the file is also archived
// and a presigned link is returned in the X-Export-Archive header.
func (h *Handler) Download(c *gin.Context) {
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
	body, err := FeedbackCSV(list)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("feedback-%s.csv", time.Now().UTC().Format("20060102-150405"))
	if h.s3 != nil {
		key := storage.ExportKey(eventID.String(), filename)
		if err := h.s3.Upload(c.Request.Context(), key, "text/csv", bytes.NewReader(body)); err != nil {
			h.logger.Warn("export archive upload failed", zap.Error(err), zap.String("event_id", eventID.String()))
		} else if url, err := h.s3.PresignDownload(c.Request.Context(), key); err == nil {
			c.Header("X-Export-Archive", url)
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, "text/csv", body)
}
