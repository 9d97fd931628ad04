package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"broadcast/internal/models"
	"broadcast/internal/service"
)

type memHub struct {
	rooms     []string
	published []models.RoomMessage
}

func (m *memHub) ActiveRooms(ctx context.Context) ([]string, error) { return m.rooms, nil }

func (m *memHub) AddRoom(ctx context.Context, room string) error {
	m.rooms = append(m.rooms, room)
	return nil
}

func (m *memHub) RemoveRoom(ctx context.Context, room string) error {
	kept := m.rooms[:0]
	for _, r := range m.rooms {
		if r != room {
			kept = append(kept, r)
		}
	}
	m.rooms = kept
	return nil
}

func (m *memHub) Publish(ctx context.Context, msg models.RoomMessage) error {
	m.published = append(m.published, msg)
	return nil
}

type memEvents struct {
	events []models.Event
}

func (m *memEvents) Record(ctx context.Context, event models.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *memEvents) ListEvents(ctx context.Context, limit int) ([]models.Event, error) {
	newest := make([]models.Event, 0, len(m.events))
	for i := len(m.events) - 1; i >= 0 && len(newest) < limit; i-- {
		newest = append(newest, m.events[i])
	}
	return newest, nil
}

func setup(t *testing.T) (*gin.Engine, *memHub, *memEvents) {
	t.Helper()
	return setupWithInterval(t, time.Hour)
}

func setupWithInterval(t *testing.T, interval time.Duration) (*gin.Engine, *memHub, *memEvents) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := &memHub{rooms: []string{"MainRoom", "sampleroom"}}
	events := &memEvents{}
	svc := service.NewBroadcastService(hub, hub, events, "MainRoom")
	sch := service.NewScheduler(svc, interval)
	t.Cleanup(func() { _ = sch.Stop() })

	r := gin.New()
	RegisterRoutes(r, NewAPIHandler(sch, svc))
	return r, hub, events
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWelcome(t *testing.T) {
	r, _, _ := setup(t)
	w := do(r, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Welcome to chat server", w.Body.String())
}

func TestBroadcast(t *testing.T) {
	r, hub, events := setup(t)

	w := do(r, http.MethodPost, "/api/broadcast/", `{"msg":"hello"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "Message sent to all rooms", w.Body.String())
	require.Len(t, hub.published, 2)
	require.Len(t, events.events, 1)
}

func TestBroadcastMissingMessage(t *testing.T) {
	r, hub, _ := setup(t)

	for _, body := range []string{`{}`, `{"msg":""}`, `not json`} {
		w := do(r, http.MethodPost, "/api/broadcast/", body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
		require.Equal(t, "No message provided", w.Body.String())
	}
	require.Empty(t, hub.published)
}

func TestRooms(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodPost, "/api/rooms/", `{"room":"new room"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.JSONEq(t, `{"room":"newroom"}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/rooms/", `{"room":" "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/rooms/", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"rooms":["MainRoom","sampleroom","newroom"]}`, w.Body.String())
}

func TestListEvents(t *testing.T) {
	r, _, _ := setup(t)
	do(r, http.MethodPost, "/api/broadcast/", `{"msg":"one"}`)
	do(r, http.MethodPost, "/api/broadcast/", `{"msg":"two"}`)

	var resp struct {
		Events []models.Event `json:"events"`
	}
	w := do(r, http.MethodGet, "/api/events/", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 2)
	require.Equal(t, "two", resp.Events[0].Data["msg"])
	require.Equal(t, "one", resp.Events[1].Data["msg"])

	w = do(r, http.MethodGet, "/api/events/?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp.Events = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 1)
	require.Equal(t, service.EventBroadcast, resp.Events[0].Name)
	require.Equal(t, "two", resp.Events[0].Data["msg"])

	w = do(r, http.MethodGet, "/api/events/?limit=abc", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveRoom(t *testing.T) {
	r, hub, _ := setup(t)

	w := do(r, http.MethodDelete, "/api/rooms/sampleroom", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, []string{"MainRoom"}, hub.rooms)

	w = do(r, http.MethodDelete, "/api/rooms/MainRoom", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, []string{"MainRoom"}, hub.rooms)

	w = do(r, http.MethodPost, "/api/broadcast/", `{"msg":"hello"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, hub.published, 1)
	require.Equal(t, "MainRoom", hub.published[0].Room)
}

func TestBroadcastMarkupOnly(t *testing.T) {
	r, hub, _ := setup(t)

	w := do(r, http.MethodPost, "/api/broadcast/", `{"msg":"<script>alert(1)</script>"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "No message provided", w.Body.String())
	require.Empty(t, hub.published)
}

func TestDebugStartInvalidInterval(t *testing.T) {
	r, _, _ := setupWithInterval(t, 0)

	w := do(r, http.MethodPost, "/api/v1/debug/start", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"debug interval must be positive"}`, w.Body.String())
}

func TestDebugToggle(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodPost, "/api/v1/debug/start", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Debug broadcaster started"}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/v1/debug/start", "")
	require.JSONEq(t, `{"message":"Debug broadcaster already running"}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/v1/debug/stop", "")
	require.JSONEq(t, `{"message":"Debug broadcaster stopped"}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/v1/debug/stop", "")
	require.JSONEq(t, `{"message":"Debug broadcaster already stopped"}`, w.Body.String())
}
