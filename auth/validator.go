package auth

import (
	"fmt"
	"regexp"
	"strings"

	"duochat/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// usernameRe accepts 3 to 20 characters: latin letters, digits, underscore,
// or Cyrillic letters. No spaces, case preserved.
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_а-яА-ЯёЁ]{3,20}$`)

// MinRoomPassword is the weaker rule applied to room gates; account
// passwords follow the validator tag on RegisterRequest.
const MinRoomPassword = 3

type RegisterRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required,min=4,max=72"`
}

// SanitizeUsername trims surrounding whitespace. All layers deal with the
// trimmed form only.
func SanitizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func ValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	if !ValidUsername(req.Username) {
		return fmt.Errorf("%w: username must be 3-20 characters without spaces", errors.ErrValidation)
	}
	return nil
}

func ValidateRoomPassword(password string) error {
	if len(password) < MinRoomPassword {
		return fmt.Errorf("%w: room password must be at least %d characters", errors.ErrValidation, MinRoomPassword)
	}
	return nil
}
