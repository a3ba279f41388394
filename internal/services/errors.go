package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrEmailTaken               = errors.New("user with this email already exists")
	ErrUsernameTaken            = errors.New("user with this username already exists")
	ErrAccountConflict          = errors.New("user with this email or username already exists")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrPasswordTooShort         = errors.New("password too short")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrResetEmailNotFound       = errors.New("user with this email does not exist")
	ErrInvalidResetToken        = errors.New("invalid or expired reset token")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrFailedToHashPassword     = errors.New("failed to hash password")
	ErrFailedToSendMail         = errors.New("failed to send email")
	ErrForbidden                = errors.New("you do not have permission to access this resource")
	ErrTaskNotFound             = errors.New("task not found")
	ErrProgressNotFound         = errors.New("progress not found")
	ErrProgressSessionOpen      = errors.New("task already has an open progress session")
	ErrProgressSessionStopped   = errors.New("progress session already stopped")
	ErrSettingsNotFound         = errors.New("settings not found")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
	Missing bool
}

func (e *ValidationError) Error() string {
	return e.Message
}

func missingField(field string) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("Missing required field: %s", field),
		Missing: true,
	}
}

func invalidField(field, format string, args ...any) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
