package account

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	goaway "github.com/TwiN/go-away"
)

// Validation errors
var (
	ErrInvalidUsername = errors.New("username must be 1-32 letters, digits, spaces or underscores")
	ErrProfaneUsername = errors.New("username is not allowed")
	ErrInvalidPassword = errors.New("password must be 3-64 characters and at most 72 bytes")
	ErrInvalidEmail    = errors.New("email is not a valid address")
)

const (
	maxUsernameLength = 32
	minPasswordLength = 3
	maxPasswordLength = 64
	maxPasswordBytes  = 72 // bcrypt refuses longer inputs
	maxEmailLength    = 64
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_ ]+$`)

// Candidate is the input to a registration
type Candidate struct {
	Username string
	Password string
	Email    string
}

// Validator checks a registration candidate before the store is consulted
type Validator interface {
	Validate(c Candidate) error
}

// RulesValidator enforces input shape and filters profane usernames
type RulesValidator struct {
	profanity *goaway.ProfanityDetector
}

// NewValidator creates a RulesValidator with the default profanity list
func NewValidator() *RulesValidator {
	return &RulesValidator{
		profanity: goaway.NewProfanityDetector(),
	}
}

// Ensure RulesValidator implements the interface
var _ Validator = (*RulesValidator)(nil)

func (v *RulesValidator) Validate(c Candidate) error {
	if len(c.Username) > maxUsernameLength ||
		!usernamePattern.MatchString(c.Username) ||
		strings.TrimSpace(c.Username) == "" {
		return ErrInvalidUsername
	}

	n := utf8.RuneCountInString(c.Password)
	if n < minPasswordLength || n > maxPasswordLength || len(c.Password) > maxPasswordBytes {
		return ErrInvalidPassword
	}

	if c.Email != "" {
		if len(c.Email) > maxEmailLength {
			return ErrInvalidEmail
		}
		addr, err := mail.ParseAddress(c.Email)
		if err != nil || addr.Address != c.Email {
			return ErrInvalidEmail
		}
	}

	if v.profanity.IsProfane(c.Username) {
		return ErrProfaneUsername
	}
	return nil
}
