package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Inspector reads signaling hello tokens issued by the Nextcloud server.
// The client holds no key for them, so signatures are not verified; the
// signaling server does that. Only shape and expiry are checked.
type Inspector interface {
	Inspect(token string) (*HelloClaims, error)
	CheckUsable(token string, now time.Time) (*HelloClaims, error)
}

// HelloClaims are the claims of a hello v2 token.
type HelloClaims struct {
	UserData map[string]any `json:"userdata,omitempty"`
	jwt.RegisteredClaims
}
