package coordinator

import "github.com/talkline/roomsession/internal/errors"

const (
	ErrNoFederation        errors.Code = "no federation settings"
	ErrEmptySession        errors.Code = "empty session id"
	errCompensationSkipped errors.Code = "compensation skipped"
)
