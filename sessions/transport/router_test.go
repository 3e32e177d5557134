package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/talkline/roomsession/internal/log"
	"github.com/talkline/roomsession/sessions"
	"github.com/talkline/roomsession/sessions/mocks"
)

func setupRouter(t *testing.T) (*Router, *mocks.MockCoordinator) {
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	mockCoordinator := mocks.NewMockCoordinator(ctrl)
	router := NewRouter(mockCoordinator, &Config{AllowedOrigins: []string{"*"}}, log.NewTest(t))
	return router, mockCoordinator
}

func doJSON(router *Router, method, path string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	router.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestHealthCheck(t *testing.T) {
	router, mockCoordinator := setupRouter(t)
	mockCoordinator.EXPECT().Handles().Return([]sessions.Handle{{Token: "abcd1234", InChat: true}})

	w := doJSON(router, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, "ok", response["status"])
	assert.Equal(t, serviceName, response["service"])
	assert.Equal(t, float64(1), response["rooms"])
}

func TestJoin(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		router, mockCoordinator := setupRouter(t)
		mockCoordinator.EXPECT().RequestJoin("abcd1234", sessions.UsageCall)

		w := doJSON(router, "POST", "/api/rooms/abcd1234/join", map[string]string{"usage": "call"})

		assert.Equal(t, http.StatusAccepted, w.Code)
		response := decode(t, w)
		assert.Equal(t, true, response["success"])
		assert.Equal(t, "abcd1234", response["token"])
		assert.Equal(t, "call", response["usage"])
	})

	t.Run("InvalidUsage", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doJSON(router, "POST", "/api/rooms/abcd1234/join", map[string]string{"usage": "video"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := decode(t, w)
		assert.Equal(t, false, response["success"])
		assert.Equal(t, "Validation failed", response["error"])
	})

	t.Run("MissingUsage", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doJSON(router, "POST", "/api/rooms/abcd1234/join", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doJSON(router, "POST", "/api/rooms/ab-c/join", map[string]string{"usage": "chat"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := decode(t, w)
		assert.Equal(t, "Validation failed", response["error"])
	})
}

func TestLeave(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		router, mockCoordinator := setupRouter(t)
		mockCoordinator.EXPECT().RequestLeave("abcd1234", sessions.UsageChat)

		w := doJSON(router, "POST", "/api/rooms/abcd1234/leave", map[string]string{"usage": "chat"})

		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/rooms/abcd1234/leave", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		router.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRejoin(t *testing.T) {
	router, mockCoordinator := setupRouter(t)
	mockCoordinator.EXPECT().Rejoin("abcd1234")

	w := doJSON(router, "POST", "/api/rooms/abcd1234/rejoin", nil)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "abcd1234", decode(t, w)["token"])
}

func TestSetPendingResume(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		router, mockCoordinator := setupRouter(t)
		mockCoordinator.EXPECT().SetPendingResume("abcd1234", true)

		w := doJSON(router, "PUT", "/api/resume", map[string]any{"token": "abcd1234", "withVideo": true})

		assert.Equal(t, http.StatusAccepted, w.Code)
		response := decode(t, w)
		assert.Equal(t, true, response["withVideo"])
	})

	t.Run("MissingToken", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doJSON(router, "PUT", "/api/resume", map[string]any{"withVideo": true})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListHandles(t *testing.T) {
	t.Run("Rooms", func(t *testing.T) {
		router, mockCoordinator := setupRouter(t)
		mockCoordinator.EXPECT().Handles().Return([]sessions.Handle{
			{Token: "abcd1234", SessionID: "s1", InCall: true},
			{Token: "efgh5678", SessionID: "s2", InChat: true},
		})

		w := doJSON(router, "GET", "/api/rooms", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, float64(2), response["count"])
		rooms := response["rooms"].([]interface{})
		first := rooms[0].(map[string]interface{})
		assert.Equal(t, "abcd1234", first["token"])
		assert.Equal(t, true, first["inCall"])
	})

	t.Run("Empty", func(t *testing.T) {
		router, mockCoordinator := setupRouter(t)
		mockCoordinator.EXPECT().Handles().Return(nil)

		w := doJSON(router, "GET", "/api/rooms", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []interface{}{}, decode(t, w)["rooms"])
	})
}

func TestGetHandle(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		router, mockCoordinator := setupRouter(t)
		mockCoordinator.EXPECT().Handle("abcd1234").
			Return(sessions.Handle{Token: "abcd1234", SessionID: "s1", InChat: true}, true)

		w := doJSON(router, "GET", "/api/rooms/abcd1234", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		room := decode(t, w)["room"].(map[string]interface{})
		assert.Equal(t, "s1", room["sessionId"])
		assert.Equal(t, true, room["inChat"])
	})

	t.Run("NotJoined", func(t *testing.T) {
		router, mockCoordinator := setupRouter(t)
		mockCoordinator.EXPECT().Handle("abcd1234").Return(sessions.Handle{}, false)

		w := doJSON(router, "GET", "/api/rooms/abcd1234", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStreamEvents(t *testing.T) {
	router, mockCoordinator := setupRouter(t)

	events := make(chan sessions.Event, 4)
	unsubscribed := make(chan struct{})
	mockCoordinator.EXPECT().Subscribe().Return((<-chan sessions.Event)(events), func() { close(unsubscribed) })

	server := httptest.NewServer(router.Handler())
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/events"
	ws, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	events <- sessions.JoinCompleted{
		Token:  "abcd1234",
		Handle: sessions.Handle{Token: "abcd1234", SessionID: "s1", InCall: true},
	}
	events <- sessions.LeaveCompleted{Token: "abcd1234"}

	var frame map[string]interface{}
	require.NoError(t, wsjson.Read(ctx, ws, &frame))
	assert.Equal(t, "joinCompleted", frame["type"])
	assert.Equal(t, "abcd1234", frame["token"])
	data := frame["data"].(map[string]interface{})
	assert.Equal(t, "s1", data["handle"].(map[string]interface{})["sessionId"])

	require.NoError(t, wsjson.Read(ctx, ws, &frame))
	assert.Equal(t, "leaveCompleted", frame["type"])

	// a closed subscription ends the stream
	close(events)
	_, _, err = ws.Read(ctx)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))

	select {
	case <-unsubscribed:
	case <-ctx.Done():
		t.Fatal("stream did not unsubscribe")
	}
}

func TestStreamEventsClientClose(t *testing.T) {
	router, mockCoordinator := setupRouter(t)

	events := make(chan sessions.Event)
	unsubscribed := make(chan struct{})
	mockCoordinator.EXPECT().Subscribe().Return((<-chan sessions.Event)(events), func() { close(unsubscribed) })

	server := httptest.NewServer(router.Handler())
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/events"
	ws, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	_ = ws.Close(websocket.StatusNormalClosure, "bye")

	select {
	case <-unsubscribed:
	case <-ctx.Done():
		t.Fatal("stream did not unsubscribe")
	}
}

func TestStreamEventsPingsOnClock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	mockCoordinator := mocks.NewMockCoordinator(ctrl)
	clock := clockwork.NewFakeClock()
	router := newRouter(mockCoordinator, &Config{AllowedOrigins: []string{"*"}}, clock, log.NewTest(t))

	events := make(chan sessions.Event, 1)
	mockCoordinator.EXPECT().Subscribe().Return((<-chan sessions.Event)(events), func() {})

	server := httptest.NewServer(router.Handler())
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/events"
	ws, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	// the ping ticker is the only waiter on the clock
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(pingInterval)

	// the pong is answered while the client reads, then the stream goes on
	events <- sessions.ResumeCall{Token: "abcd1234", WithVideo: true}
	var frame map[string]interface{}
	require.NoError(t, wsjson.Read(ctx, ws, &frame))
	assert.Equal(t, "resumeCall", frame["type"])
}
