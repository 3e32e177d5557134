package ocs

import (
	"encoding/json"

	"github.com/talkline/roomsession/sessions"
)

// envelope is the OCS response wrapper shared by every endpoint.
type envelope struct {
	OCS struct {
		Meta meta            `json:"meta"`
		Data json.RawMessage `json:"data"`
	} `json:"ocs"`
}

type meta struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statuscode"`
	Message    string `json:"message"`
}

// errorData is the data of a failed Talk request, e.g. {"error":"ban"}.
type errorData struct {
	Error string `json:"error"`
}

// roomData is a Talk room; joins additionally carry the new session id.
type roomData struct {
	sessions.RoomMetadata
	SessionID string `json:"sessionId"`
}

type joinRequest struct {
	Force bool `json:"force"`
}
