package feedback

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventpulse/backend/internal/middleware"
	"github.com/eventpulse/backend/internal/models"
	"github.com/eventpulse/backend/internal/realtime"
)

func newTestRouter(t *testing.T, store *fakeStore, userID uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	agg := NewAggregator(store, clockwork.NewFakeClock())
	hub := realtime.NewHub(zap.NewNop(), nil, nil)
	h := NewHandler(agg, hub, nil, zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, "attendee")
	})
	r.POST("/sessions/:id/feedback", h.Create)
	r.GET("/events/:id/feedback/recent", h.Recent)
	return r
}

func TestCreateFeedbackHandlerAnonymousMasking(t *testing.T) {
	store := &fakeStore{}
	userID := uuid.New()
	r := newTestRouter(t, store, userID)
	sessionID := uuid.New()
	eventID := uuid.New()

	body := `{"event_id":"` + eventID.String() + `","rating":4,"comment":"solid session","anonymous":true}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID.String()+"/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 4, resp.Data.Rating)
	assert.Equal(t, "Anonymous", resp.Data.AuthorName)
	assert.Nil(t, resp.Data.UserID, "anonymous feedback must not expose the author id")

	// The raw JSON must not carry a user_id key at all.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["data"], &data))
	_, present := data["user_id"]
	assert.False(t, present)
}

func TestCreateFeedbackHandlerNamedAuthor(t *testing.T) {
	store := &fakeStore{}
	userID := uuid.New()
	r := newTestRouter(t, store, userID)

	body := `{"event_id":"` + uuid.New().String() + `","rating":5}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+uuid.New().String()+"/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Data View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.UserID)
	assert.Equal(t, userID, *resp.Data.UserID)
}

func TestRecentHandlerDefaultLimit(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(t, store, uuid.New())
	eventID := uuid.New()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	for i := 0; i < DefaultRecentLimit+3; i++ {
		store.entries = append(store.entries, models.Feedback{
			ID:        uuid.New(),
			EventID:   eventID,
			SessionID: uuid.New(),
			UserID:    uuid.New(),
			Rating:    3,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events/"+eventID.String()+"/feedback/recent", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Feedback []View `json:"feedback"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Feedback, DefaultRecentLimit)

	// Newest first: the last seeded entry leads.
	newest := store.entries[len(store.entries)-1]
	assert.Equal(t, newest.ID, resp.Data.Feedback[0].ID)
}

func TestRecentHandlerExplicitLimit(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(t, store, uuid.New())
	eventID := uuid.New()

	for i := 0; i < 4; i++ {
		store.entries = append(store.entries, models.Feedback{
			ID:      uuid.New(),
			EventID: eventID,
			UserID:  uuid.New(),
			Rating:  4,
		})
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events/"+eventID.String()+"/feedback/recent?limit=2", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Feedback []View `json:"feedback"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Feedback, 2)
}
