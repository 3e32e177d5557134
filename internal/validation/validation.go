package validation

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/talkline/roomsession/internal/errors"
)

const (
	ErrUnsupportedEngine errors.Code = "gin validator engine is not *validator.Validate"
	ErrRegister          errors.Code = "validation rule rejected"
)

// Rule is either a custom tag backed by Fn or an Alias expanding to other tags.
type Rule struct {
	Tag   string
	Fn    validator.Func
	Alias string
}

// Apply registers rules on v, stopping at the first failure.
func Apply(v *validator.Validate, rules ...Rule) error {
	for _, r := range rules {
		if r.Fn == nil {
			v.RegisterAlias(r.Tag, r.Alias)
			continue
		}
		if err := v.RegisterValidation(r.Tag, r.Fn); err != nil {
			return errors.Wrapf(ErrRegister, err, "register %s", r.Tag)
		}
	}
	return nil
}

// ApplyGin registers rules on the engine used by gin's ShouldBind calls.
func ApplyGin(rules ...Rule) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return ErrUnsupportedEngine
	}
	return Apply(v, rules...)
}
