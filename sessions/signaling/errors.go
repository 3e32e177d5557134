package signaling

import "github.com/talkline/roomsession/internal/errors"

const (
	ErrBufferFull       errors.Code = "signaling buffer full"
	ErrConnectionClosed errors.Code = "signaling connection closed"
	ErrRejected         errors.Code = "signaling request rejected"
	ErrNoCredentials    errors.Code = "no usable hello credentials"
	ErrNoServer         errors.Code = "no signaling server configured"
)
