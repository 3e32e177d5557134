package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/suite"
)

type ValidationTestSuite struct {
	suite.Suite
	validator *validator.Validate
}

func (s *ValidationTestSuite) SetupTest() {
	s.validator = validator.New()
	s.Require().NoError(Apply(s.validator, Rules...))
}

func TestValidationTestSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestValidateRoomToken() {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"talk token", "x7k2pq9a", false},
		{"short", "room", false},
		{"mixed case", "Room42ab", false},
		{"max length", "abcdefghijklmnopqrstuvwxyz0123456789abcdefghijklmnopqrstuvwxyz01", false},
		{"too short", "r42", true},
		{"too long", "abcdefghijklmnopqrstuvwxyz0123456789abcdefghijklmnopqrstuvwxyz012", true},
		{"hyphen", "room-42", true},
		{"slash", "room/42", true},
		{"space", "room 42", true},
		{"empty", "", true},
	}

	type request struct {
		Token string `validate:"roomtoken"`
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.validator.Struct(request{Token: tt.token})
			if tt.wantErr {
				s.Error(err)
			} else {
				s.NoError(err)
			}
		})
	}
}

func (s *ValidationTestSuite) TestUsageAlias() {
	type request struct {
		Usage string `validate:"required,usage"`
	}

	s.NoError(s.validator.Struct(request{Usage: "chat"}))
	s.NoError(s.validator.Struct(request{Usage: "call"}))
	s.Error(s.validator.Struct(request{Usage: "video"}))
	s.Error(s.validator.Struct(request{}))
}

func (s *ValidationTestSuite) TestFormatValidationError() {
	type request struct {
		Token string `validate:"roomtoken"`
		Usage string `validate:"usage"`
	}

	err := s.validator.Struct(request{Token: "r", Usage: "x"})
	s.Require().Error(err)

	details := FormatValidationError(err)
	s.Len(details, 2)
	s.Equal("Token", details[0].Field)
	s.Equal("Usage", details[1].Field)
	s.NotEmpty(details[0].Message)
}

func (s *ValidationTestSuite) TestFormatNonValidationError() {
	s.Empty(FormatValidationError(errString("bad json")))
}

func (s *ValidationTestSuite) TestGinEngineRegistration() {
	s.NoError(ApplyGin(Rules...))
}

func (s *ValidationTestSuite) TestApplyRejectsEmptyTag() {
	err := Apply(validator.New(), Rule{Fn: ValidateRoomToken})
	s.ErrorIs(err, ErrRegister)
}

type errString string

func (e errString) Error() string { return string(e) }
