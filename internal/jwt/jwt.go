package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/talkline/roomsession/internal/errors"
)

// NewInspector returns an Inspector that treats tokens expiring within leeway as already expired.
func NewInspector(leeway time.Duration) Inspector {
	return &inspectorImpl{
		parser: jwt.NewParser(),
		leeway: leeway,
	}
}

type inspectorImpl struct {
	parser *jwt.Parser
	leeway time.Duration
}

func (i *inspectorImpl) Inspect(tokenString string) (*HelloClaims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	claims := &HelloClaims{}
	if _, _, err := i.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err, "malformed hello token")
	}
	if claims.Issuer == "" {
		return nil, errors.New(ErrInvalidToken, "hello token has no issuer")
	}
	return claims, nil
}

func (i *inspectorImpl) CheckUsable(tokenString string, now time.Time) (*HelloClaims, error) {
	claims, err := i.Inspect(tokenString)
	if err != nil {
		return nil, err
	}

	// tokens without exp never expire on our side
	if claims.ExpiresAt == nil {
		return claims, nil
	}
	if !now.Add(i.leeway).Before(claims.ExpiresAt.Time) {
		return nil, errors.Newf(ErrExpiredToken, "hello token expired at %s", claims.ExpiresAt.Time.Format(time.RFC3339))
	}
	return claims, nil
}
