package signaling

import (
	"encoding/json"

	"github.com/talkline/roomsession/sessions"
)

const (
	typeHello = "hello"
	typeRoom  = "room"
	typeError = "error"
	typeBye   = "bye"

	helloV1 = "1.0"
	helloV2 = "2.0"

	backendPath = "/ocs/v2.php/apps/spreed/api/v3/signaling/backend"
)

// message is the envelope of the standalone signaling protocol.
type message struct {
	ID    string        `json:"id,omitempty"`
	Type  string        `json:"type"`
	Hello *helloMessage `json:"hello,omitempty"`
	Room  *roomMessage  `json:"room,omitempty"`
	Error *errorMessage `json:"error,omitempty"`
	Bye   *byeMessage   `json:"bye,omitempty"`
}

type helloMessage struct {
	Version   string     `json:"version"`
	SessionID string     `json:"sessionid,omitempty"`
	Auth      *helloAuth `json:"auth,omitempty"`
}

type helloAuth struct {
	Type   string          `json:"type,omitempty"`
	URL    string          `json:"url"`
	Params json.RawMessage `json:"params"`
}

type roomMessage struct {
	RoomID     string                     `json:"roomid"`
	SessionID  string                     `json:"sessionid,omitempty"`
	Federation *sessions.FederationParams `json:"federation,omitempty"`
}

type errorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type byeMessage struct {
	Reason string `json:"reason,omitempty"`
}
