package ocs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/talkline/roomsession/internal/errors"
	"github.com/talkline/roomsession/internal/log"
	"github.com/talkline/roomsession/sessions"
)

type OCSClientTestSuite struct {
	suite.Suite
	server *httptest.Server
	client *Client

	mu       sync.Mutex
	requests []*http.Request
	bodies   []map[string]any
	handler  func(w http.ResponseWriter, r *http.Request)
}

func TestOCSClientSuite(t *testing.T) {
	suite.Run(t, new(OCSClientTestSuite))
}

func (s *OCSClientTestSuite) SetupTest() {
	s.requests = nil
	s.bodies = nil
	s.handler = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		s.mu.Lock()
		s.requests = append(s.requests, r)
		s.bodies = append(s.bodies, body)
		handler := s.handler
		s.mu.Unlock()

		handler(w, r)
	}))
	s.client = NewClient(&Config{
		BaseURL:     s.server.URL + "/",
		User:        "alice",
		AppPassword: "app-secret",
		Timeout:     time.Second,
	}, log.NewNop())
}

func (s *OCSClientTestSuite) TearDownTest() {
	s.server.Close()
}

func writeOCS(w http.ResponseWriter, status int, data any) {
	payload, _ := json.Marshal(data)
	body := map[string]any{
		"ocs": map[string]any{
			"meta": map[string]any{"status": "ok", "statuscode": status, "message": http.StatusText(status)},
			"data": json.RawMessage(payload),
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *OCSClientTestSuite) lastRequest() (*http.Request, map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Require().NotEmpty(s.requests)
	n := len(s.requests) - 1
	return s.requests[n], s.bodies[n]
}

func (s *OCSClientTestSuite) TestJoin() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		writeOCS(w, http.StatusOK, map[string]any{
			"token":       "room42",
			"name":        "standup",
			"displayName": "Daily standup",
			"type":        2,
			"hasCall":     true,
			"sessionId":   "sess-abc",
		})
	}

	res, err := s.client.Join(context.Background(), "room42")
	s.Require().NoError(err)
	s.Equal("sess-abc", res.SessionID)
	s.Equal("Daily standup", res.Room.DisplayName)
	s.True(res.Room.HasCall)
	s.False(res.Room.IsFederated())

	req, body := s.lastRequest()
	s.Equal(http.MethodPost, req.Method)
	s.Equal("/ocs/v2.php/apps/spreed/api/v4/room/room42/participants/active", req.URL.Path)
	s.Equal("true", req.Header.Get("OCS-APIRequest"))
	s.Equal(true, body["force"])

	user, pass, ok := req.BasicAuth()
	s.True(ok)
	s.Equal("alice", user)
	s.Equal("app-secret", pass)
}

func (s *OCSClientTestSuite) TestExit() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		writeOCS(w, http.StatusOK, nil)
	}

	s.NoError(s.client.Exit(context.Background(), "room42"))

	req, _ := s.lastRequest()
	s.Equal(http.MethodDelete, req.Method)
	s.Equal("/ocs/v2.php/apps/spreed/api/v4/room/room42/participants/active", req.URL.Path)
}

func (s *OCSClientTestSuite) TestGetFederatedRoom() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		writeOCS(w, http.StatusOK, map[string]any{
			"token":        "room42",
			"remoteServer": "https://remote.example.com",
			"remoteToken":  "abc123",
		})
	}

	room, err := s.client.Get(context.Background(), "room42")
	s.Require().NoError(err)
	s.True(room.IsFederated())
	s.Equal("abc123", room.RemoteToken)

	req, _ := s.lastRequest()
	s.Equal("/ocs/v2.php/apps/spreed/api/v4/room/room42", req.URL.Path)
}

func (s *OCSClientTestSuite) TestGetSignalingSettings() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		writeOCS(w, http.StatusOK, map[string]any{
			"signalingMode": "external",
			"userId":        "alice",
			"server":        "wss://hpb.example.com",
			"ticket":        "ticket-1",
			"helloAuthParams": map[string]any{
				"1.0": map[string]any{"userid": "alice", "ticket": "ticket-1"},
				"2.0": map[string]any{"token": "jwt-token"},
			},
			"federation": map[string]any{
				"server":          "wss://hpb.remote.example.com",
				"nextcloudServer": "https://remote.example.com",
				"helloAuthParams": map[string]any{"token": "remote-jwt"},
				"roomId":          "abc123",
			},
		})
	}

	settings, err := s.client.GetSignalingSettings(context.Background(), "room42")
	s.Require().NoError(err)
	s.Equal("external", settings.SignalingMode)
	s.Equal("jwt-token", settings.HelloAuthParams["2.0"].Token)
	s.Equal(&sessions.FederationParams{
		SignalingURL: "wss://hpb.remote.example.com",
		NextcloudURL: "https://remote.example.com",
		RoomID:       "abc123",
		Token:        "remote-jwt",
	}, settings.FederationParams())

	req, _ := s.lastRequest()
	s.Equal("/ocs/v2.php/apps/spreed/api/v3/signaling/settings", req.URL.Path)
	s.Equal("room42", req.URL.Query().Get("token"))
}

func (s *OCSClientTestSuite) TestErrorStatusCarriesReason() {
	tests := []struct {
		status int
		reason string
		kind   errors.Code
	}{
		{status: http.StatusForbidden, reason: "ban", kind: sessions.KindAuthorization},
		{status: http.StatusForbidden, reason: "password", kind: sessions.KindAuthorization},
		{status: http.StatusNotFound, kind: sessions.KindNotFound},
		{status: http.StatusConflict, kind: sessions.KindConflict},
		{status: http.StatusServiceUnavailable, kind: sessions.KindServerUnavailable},
	}

	for _, tt := range tests {
		s.Run(http.StatusText(tt.status)+"/"+tt.reason, func() {
			s.handler = func(w http.ResponseWriter, _ *http.Request) {
				writeOCS(w, tt.status, map[string]any{"error": tt.reason})
			}

			_, err := s.client.Join(context.Background(), "room42")
			s.Require().Error(err)

			statusErr, ok := errors.As[*sessions.StatusError](err)
			s.Require().True(ok)
			s.Equal(tt.status, (*statusErr).StatusCode)
			s.Equal(tt.reason, (*statusErr).Reason)
			s.True(errors.Is(sessions.Classify(err), tt.kind))
		})
	}
}

func (s *OCSClientTestSuite) TestTransportFailureHasNoStatus() {
	s.server.Close()

	err := s.client.Exit(context.Background(), "room42")
	s.Require().Error(err)

	classified := sessions.Classify(err)
	s.Equal(0, classified.StatusCode)
	s.True(errors.Is(classified, sessions.KindTransport))
}

func (s *OCSClientTestSuite) TestCancelledRequest() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		writeOCS(w, http.StatusOK, nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.client.Join(ctx, "room42")
	s.Require().Error(err)
	s.True(sessions.IsCancelled(err))
}

func (s *OCSClientTestSuite) TestNonJSONErrorBody() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}

	_, err := s.client.Get(context.Background(), "room42")
	s.Require().Error(err)

	classified := sessions.Classify(err)
	s.Equal(http.StatusBadGateway, classified.StatusCode)
	s.True(errors.Is(classified, sessions.KindUnknown))
}

type CachedDirectoryTestSuite struct {
	suite.Suite
	server *httptest.Server
	dir    *CachedDirectory
	gets   atomic.Int32
	gate   chan struct{}
	status atomic.Int32
}

func TestCachedDirectorySuite(t *testing.T) {
	suite.Run(t, new(CachedDirectoryTestSuite))
}

func (s *CachedDirectoryTestSuite) SetupTest() {
	s.gets.Store(0)
	s.status.Store(http.StatusOK)
	s.gate = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.gets.Add(1)
			if s.gate != nil {
				<-s.gate
			}
			if status := int(s.status.Load()); status != http.StatusOK {
				writeOCS(w, status, map[string]any{"error": ""})
				return
			}
			writeOCS(w, http.StatusOK, map[string]any{"token": "room42", "displayName": "fetched"})
		case http.MethodPost:
			writeOCS(w, http.StatusOK, map[string]any{"token": "room42", "displayName": "joined", "sessionId": "s1"})
		default:
			writeOCS(w, http.StatusOK, nil)
		}
	}))

	client := NewClient(&Config{BaseURL: s.server.URL, Timeout: time.Second}, log.NewNop())
	dir, err := NewCachedDirectory(client, 8)
	s.Require().NoError(err)
	s.dir = dir
}

func (s *CachedDirectoryTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *CachedDirectoryTestSuite) TestGetIsCached() {
	first, err := s.dir.Get(context.Background(), "room42")
	s.Require().NoError(err)
	first.DisplayName = "mutated by caller"

	second, err := s.dir.Get(context.Background(), "room42")
	s.Require().NoError(err)
	s.Equal("fetched", second.DisplayName)
	s.Equal(int32(1), s.gets.Load())
}

func (s *CachedDirectoryTestSuite) TestJoinRefreshesCache() {
	_, err := s.dir.Join(context.Background(), "room42")
	s.Require().NoError(err)

	room, err := s.dir.Get(context.Background(), "room42")
	s.Require().NoError(err)
	s.Equal("joined", room.DisplayName)
	s.Equal(int32(0), s.gets.Load())
}

func (s *CachedDirectoryTestSuite) TestConcurrentMissesShareOneFetch() {
	s.gate = make(chan struct{})

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			room, err := s.dir.Get(context.Background(), "room42")
			s.NoError(err)
			s.Equal("fetched", room.DisplayName)
		}()
	}

	s.Eventually(func() bool { return s.gets.Load() == 1 }, time.Second, 5*time.Millisecond)
	close(s.gate)
	wg.Wait()
	s.Equal(int32(1), s.gets.Load())
}

func (s *CachedDirectoryTestSuite) TestErrorsAreNotCached() {
	s.status.Store(http.StatusNotFound)
	_, err := s.dir.Get(context.Background(), "room42")
	s.Require().Error(err)

	s.status.Store(http.StatusOK)
	room, err := s.dir.Get(context.Background(), "room42")
	s.Require().NoError(err)
	s.Equal("fetched", room.DisplayName)
	s.Equal(int32(2), s.gets.Load())
}
