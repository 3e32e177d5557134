package ocs

import "github.com/talkline/roomsession/internal/errors"

const (
	ErrRequestFailed   errors.Code = "ocs request failed"
	ErrStatus          errors.Code = "ocs error status"
	ErrInvalidResponse errors.Code = "invalid ocs response"
)
