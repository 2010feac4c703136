package services

import (
	"errors"
	"strings"

	"github.com/terraincognita07/nyinsen/internal/security"
)

var (
	ErrPasswordChangeIncomplete = errors.New("current, new and confirmation passwords are required")
	ErrPasswordChangeMismatch   = errors.New("new passwords do not match")
	ErrCurrentPasswordInvalid   = errors.New("current password is incorrect")
	ErrNewPasswordUnchanged     = errors.New("new password must differ from the current one")
	ErrNewPasswordWeak          = errors.New("new password is too weak")
)

type PasswordChangeInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ValidatePasswordChange returns the trimmed new password when the change is allowed.
func ValidatePasswordChange(passwordHash string, input PasswordChangeInput) (string, error) {
	currentPassword := strings.TrimSpace(input.CurrentPassword)
	newPassword := strings.TrimSpace(input.NewPassword)
	confirmPassword := strings.TrimSpace(input.ConfirmPassword)

	if currentPassword == "" || newPassword == "" || confirmPassword == "" {
		return "", ErrPasswordChangeIncomplete
	}
	if newPassword != confirmPassword {
		return "", ErrPasswordChangeMismatch
	}
	if !security.PasswordMatches(passwordHash, currentPassword) {
		return "", ErrCurrentPasswordInvalid
	}
	if currentPassword == newPassword {
		return "", ErrNewPasswordUnchanged
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return "", ErrNewPasswordWeak
	}
	return newPassword, nil
}
