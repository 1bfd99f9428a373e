package credential

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

const (
	minPasswordLength = 8
	passwordSymbols   = `!@#$%^&*()_+=-{}[]|:;"'<>,.?/`
)

const (
	tagEmailFormat    = "emailformat"
	tagStrongPassword = "strongpassword"
)

// Error messages returned to clients.
const (
	msgRegisterRequired = "First name, email, and password are required"
	msgLoginRequired    = "Email and password are required"
	msgInvalidEmail     = "Invalid email format"
	msgWeakPassword     = "Password must be at least 8 characters long, include uppercase and lowercase letters, a number, and a special character."
	msgEmailTaken       = "Email already exists"
)

type registration struct {
	FirstName string `validate:"required"`
	Email     string `validate:"required,emailformat"`
	Password  string `validate:"required,strongpassword"`
}

type login struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation(tagEmailFormat, func(fl validator.FieldLevel) bool {
		return validEmail(fl.Field().String())
	})
	_ = v.RegisterValidation(tagStrongPassword, func(fl validator.FieldLevel) bool {
		return strongPassword(fl.Field().String())
	})
	return v
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// strongPassword requires at least 8 characters on a single line with an
// uppercase letter, a lowercase letter, a digit and a symbol.
func strongPassword(password string) bool {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return false
	}
	if strings.ContainsAny(password, "\r\n") {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// failedTags returns the set of validation tags that rejected the input.
func failedTags(err error) map[string]bool {
	tags := make(map[string]bool)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			tags[fe.Tag()] = true
		}
	}
	return tags
}
