package jwt

import "github.com/talkline/roomsession/internal/errors"

const (
	ErrInvalidToken errors.Code = "invalid token"
	ErrNoToken      errors.Code = "no token"
	ErrExpiredToken errors.Code = "expired token"
)
