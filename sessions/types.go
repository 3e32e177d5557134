package sessions

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . BackendRoomClient,SignalingGateway,Coordinator

import (
	"context"
)

// Usage is one of the two independent reasons the client stays joined to a room.
type Usage string

const (
	UsageChat Usage = "chat"
	UsageCall Usage = "call"
)

func (u Usage) Valid() bool {
	return u == UsageChat || u == UsageCall
}

// Handle records a room joined on both the backend and, when configured, the
// signaling gateway. Handles are values; the registry hands out copies.
type Handle struct {
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
	InCall    bool   `json:"inCall"`
	InChat    bool   `json:"inChat"`
}

func (h Handle) Has(u Usage) bool {
	switch u {
	case UsageCall:
		return h.InCall
	case UsageChat:
		return h.InChat
	}
	return false
}

// With returns a copy with the usage flag set to on.
func (h Handle) With(u Usage, on bool) Handle {
	switch u {
	case UsageCall:
		h.InCall = on
	case UsageChat:
		h.InChat = on
	}
	return h
}

// Idle reports whether no usage keeps the room joined.
func (h Handle) Idle() bool {
	return !h.InCall && !h.InChat
}

// RoomMetadata is the subset of the Talk room payload the session layer cares about.
type RoomMetadata struct {
	Token        string `json:"token"`
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Type         int    `json:"type"`
	HasPassword  bool   `json:"hasPassword"`
	HasCall      bool   `json:"hasCall"`
	ReadOnly     int    `json:"readOnly"`
	RemoteServer string `json:"remoteServer,omitempty"`
	RemoteToken  string `json:"remoteToken,omitempty"`
}

// IsFederated reports whether the room is hosted on another server, in which
// case calls need federation parameters from the signaling settings.
func (m *RoomMetadata) IsFederated() bool {
	return m != nil && m.RemoteServer != ""
}

type JoinResult struct {
	SessionID string
	Room      *RoomMetadata
}

// HelloAuthParams authenticates a signaling hello: v1.0 uses userid+ticket, v2.0 a token.
type HelloAuthParams struct {
	UserID string `json:"userid,omitempty"`
	Ticket string `json:"ticket,omitempty"`
	Token  string `json:"token,omitempty"`
}

type FederationSettings struct {
	Server          string          `json:"server"`
	NextcloudServer string          `json:"nextcloudServer"`
	HelloAuthParams HelloAuthParams `json:"helloAuthParams"`
	RoomID          string          `json:"roomId"`
}

type SignalingSettings struct {
	SignalingMode   string                     `json:"signalingMode"`
	UserID          string                     `json:"userId"`
	Server          string                     `json:"server"`
	Ticket          string                     `json:"ticket"`
	HelloAuthParams map[string]HelloAuthParams `json:"helloAuthParams"`
	Federation      *FederationSettings        `json:"federation,omitempty"`
}

// FederationParams is what the signaling gateway needs to join a room
// hosted on a remote server.
type FederationParams struct {
	SignalingURL string `json:"signaling"`
	NextcloudURL string `json:"url"`
	RoomID       string `json:"roomid,omitempty"`
	Token        string `json:"token"`
}

// FederationParams derives the join parameters; nil when the room is local.
func (s *SignalingSettings) FederationParams() *FederationParams {
	if s == nil || s.Federation == nil || s.Federation.Server == "" {
		return nil
	}
	return &FederationParams{
		SignalingURL: s.Federation.Server,
		NextcloudURL: s.Federation.NextcloudServer,
		RoomID:       s.Federation.RoomID,
		Token:        s.Federation.HelloAuthParams.Token,
	}
}

// BackendRoomClient talks to the room REST API for one account.
// Failures carry a *StatusError; transport failures have StatusCode 0.
type BackendRoomClient interface {
	Join(ctx context.Context, token string) (*JoinResult, error)
	Exit(ctx context.Context, token string) error
	Get(ctx context.Context, token string) (*RoomMetadata, error)
	GetSignalingSettings(ctx context.Context, token string) (*SignalingSettings, error)
}

// SignalingGateway is the optional real-time server joined after the backend.
type SignalingGateway interface {
	Join(ctx context.Context, token, sessionID string, federation *FederationParams) error
	// Leave is fire-and-forget.
	Leave(token string)
}

// Coordinator serializes join/leave intents for one account. Commands return
// immediately; outcomes are delivered as events to subscribers.
type Coordinator interface {
	RequestJoin(token string, usage Usage)
	RequestLeave(token string, usage Usage)
	Rejoin(token string)
	SetPendingResume(token string, withVideo bool)

	Handle(token string) (Handle, bool)
	Handles() []Handle
	IsInCall(token string) bool
	IsInChat(token string) bool

	Subscribe() (<-chan Event, func())
}
