package questions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventpulse/backend/internal/middleware"
	"github.com/eventpulse/backend/internal/realtime"
)

func newTestRouter(t *testing.T, store *fakeStore, userID uuid.UUID, role string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	board := NewBoard(store, clockwork.NewFakeClock())
	hub := realtime.NewHub(zap.NewNop(), nil, nil)
	h := NewHandler(board, hub)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, role)
	})
	r.POST("/sessions/:id/questions", h.Create)
	r.GET("/sessions/:id/questions", h.ListBySession)
	r.POST("/questions/:id/upvote", h.Upvote)
	r.PATCH("/questions/:id/answer", h.Answer)
	return r
}

func TestCreateQuestionHandler(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	r := newTestRouter(t, store, userID, "attendee")
	sessionID := uuid.New()
	eventID := uuid.New()

	body := `{"event_id":"` + eventID.String() + `","content":"What comes next?","anonymous":true}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID.String()+"/questions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "What comes next?", resp.Data.Content)
	assert.Equal(t, "Anonymous", resp.Data.AuthorName)
	assert.Nil(t, resp.Data.UserID, "anonymous question must not expose the author id")
}

func TestCreateQuestionHandlerEmptyContent(t *testing.T) {
	r := newTestRouter(t, newFakeStore(), uuid.New(), "attendee")

	body := `{"event_id":"` + uuid.New().String() + `","content":"   "}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+uuid.New().String()+"/questions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpvoteHandlerUnknownQuestion(t *testing.T) {
	r := newTestRouter(t, newFakeStore(), uuid.New(), "attendee")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/questions/"+uuid.New().String()+"/upvote", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnswerHandlerForbiddenForAttendee(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(t, store, uuid.New(), "attendee")
	board := NewBoard(store, clockwork.NewFakeClock())
	q, err := board.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), "why not?", false)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/questions/"+q.ID.String()+"/answer", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListHandlerRankedOrder(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(t, store, uuid.New(), "attendee")
	board := NewBoard(store, clockwork.NewFakeClock())
	sessionID := uuid.New()

	qa, err := board.Submit(context.Background(), uuid.New(), sessionID, uuid.New(), "a", false)
	require.NoError(t, err)
	_, err = board.Submit(context.Background(), uuid.New(), sessionID, uuid.New(), "b", false)
	require.NoError(t, err)
	_, err = board.Upvote(context.Background(), qa.ID)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions/"+sessionID.String()+"/questions", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Questions []View `json:"questions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Questions, 2)
	assert.Equal(t, qa.ID, resp.Data.Questions[0].ID)
}
