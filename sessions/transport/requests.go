package transport

import "github.com/talkline/roomsession/sessions"

// RoomURI is the room token path parameter.
type RoomURI struct {
	Token string `uri:"token" binding:"required,roomtoken"`
}

// UsageBody selects which usage a join or leave is about.
type UsageBody struct {
	Usage sessions.Usage `json:"usage" binding:"required,usage"`
}

// ResumeBody queues the call to start once the next leave finishes.
type ResumeBody struct {
	Token     string `json:"token" binding:"required,roomtoken"`
	WithVideo bool   `json:"withVideo"`
}
