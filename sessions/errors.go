package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/talkline/roomsession/internal/errors"
)

// Error kinds. A classified *Error matches its kind with errors.Is.
const (
	KindTransport         errors.Code = "transport error"
	KindAuthorization     errors.Code = "authorization error"
	KindNotFound          errors.Code = "not found"
	KindConflict          errors.Code = "conflict"
	KindRemoteUnreachable errors.Code = "remote unreachable"
	KindServerUnavailable errors.Code = "server unavailable"
	KindUnknown           errors.Code = "unknown error"
	KindSignaling         errors.Code = "signaling error"
	KindConfiguration     errors.Code = "configuration error"
)

// Reason strings shown to users.
const (
	ReasonNoResponse        = "server did not respond"
	ReasonWrongPassword     = "wrong conversation password"
	ReasonBanned            = "banned from this conversation"
	ReasonForbidden         = "access to conversation denied"
	ReasonNotFound          = "conversation not found"
	ReasonDuplicateSession  = "duplicate session"
	ReasonRemoteUnreachable = "remote server unreachable"
	ReasonMaintenance       = "server in maintenance mode"
	ReasonUnknown           = "unknown error"
	ReasonSignaling         = "could not join the signaling server"
	ReasonSettings          = "signaling settings unavailable"
)

// StatusError is how a BackendRoomClient reports a failed call. StatusCode 0
// means no response; Reason is the server's machine-readable error, if any.
type StatusError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("status %d", e.StatusCode)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.Err }

// Error is a classified failure delivered to callers in JoinFailed and LeaveCompleted.
type Error struct {
	Kind       errors.Code
	StatusCode int
	Reason     string
	IsBanned   bool
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	code, ok := target.(errors.Code)
	return ok && code == e.Kind
}

// Retryable reports whether the coordinator may re-issue the call that produced e.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTransport, KindNotFound, KindConflict, KindRemoteUnreachable,
		KindServerUnavailable, KindUnknown:
		return true
	default:
		return false
	}
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind       string `json:"kind"`
		StatusCode int    `json:"statusCode"`
		Reason     string `json:"reason"`
		IsBanned   bool   `json:"isBanned"`
		Retryable  bool   `json:"retryable"`
	}{string(e.Kind), e.StatusCode, e.Reason, e.IsBanned, e.Retryable()})
}

// Classify maps a backend failure to an *Error. Already classified errors are
// returned unchanged; errors without a status count as no response.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if classified, ok := errors.As[*Error](err); ok {
		return *classified
	}

	statusErr, ok := errors.As[*StatusError](err)
	if !ok {
		return &Error{Kind: KindTransport, Reason: ReasonNoResponse, Err: err}
	}

	status := (*statusErr).StatusCode
	reason := strings.ToLower((*statusErr).Reason)
	e := &Error{StatusCode: status, Err: err}

	switch status {
	case 0:
		e.Kind, e.Reason = KindTransport, ReasonNoResponse
	case http.StatusForbidden:
		e.Kind = KindAuthorization
		switch reason {
		case "ban":
			e.Reason, e.IsBanned = ReasonBanned, true
		case "password":
			e.Reason = ReasonWrongPassword
		default:
			e.Reason = ReasonForbidden
		}
	case http.StatusNotFound:
		e.Kind, e.Reason = KindNotFound, ReasonNotFound
	case http.StatusConflict:
		e.Kind, e.Reason = KindConflict, ReasonDuplicateSession
	case http.StatusUnprocessableEntity:
		e.Kind, e.Reason = KindRemoteUnreachable, ReasonRemoteUnreachable
	case http.StatusServiceUnavailable:
		e.Kind, e.Reason = KindServerUnavailable, ReasonMaintenance
	default:
		e.Kind, e.Reason = KindUnknown, ReasonUnknown
	}
	return e
}

func NewSignalingError(err error) *Error {
	return &Error{Kind: KindSignaling, Reason: ReasonSignaling, Err: err}
}

func NewConfigurationError(err error) *Error {
	return &Error{Kind: KindConfiguration, Reason: ReasonSettings, Err: err}
}

// IsCancelled reports whether err stems from a locally abandoned call.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
