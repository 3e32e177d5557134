package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Talk tokens are short lowercase alphanumerics; allow some headroom for other servers.
var roomTokenRegex = regexp.MustCompile(`^[A-Za-z0-9]{4,64}$`)

// Rules are the tags the control API binds with.
var Rules = []Rule{
	{Tag: "roomtoken", Fn: ValidateRoomToken},
	{Tag: "usage", Alias: "oneof=chat call"},
}

func init() {
	if err := ApplyGin(Rules...); err != nil {
		panic(err)
	}
}

func ValidateRoomToken(fl validator.FieldLevel) bool {
	return roomTokenRegex.MatchString(fl.Field().String())
}
