package services

import (
	"errors"
	"net/mail"
	"strings"
)

const maxEmailLength = 254

var (
	ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")
	ErrAuthEmailInvalid       = errors.New("auth email invalid")
	ErrAuthPasswordMismatch   = errors.New("auth password mismatch")
)

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || len(email) > maxEmailLength {
		return ""
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return ""
	}
	return email
}

func NormalizeCredentialsInput(emailRaw string, passwordRaw string) (string, string, error) {
	email := NormalizeAuthEmail(emailRaw)
	password := strings.TrimSpace(passwordRaw)
	if email == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return email, password, nil
}

type RegistrationInput struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// NormalizeRegistrationInput returns the normalized email and the password to
// hash, or the first rule the input breaks.
func NormalizeRegistrationInput(input RegistrationInput) (string, string, error) {
	email := NormalizeAuthEmail(input.Email)
	if email == "" {
		return "", "", ErrAuthEmailInvalid
	}
	password := strings.TrimSpace(input.Password)
	if password != strings.TrimSpace(input.ConfirmPassword) {
		return "", "", ErrAuthPasswordMismatch
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return "", "", err
	}
	return email, password, nil
}
