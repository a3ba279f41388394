package constants

import "time"

// Context keys shared between middleware and handlers
const (
	ContextKeyUserID    = "user_id"
	ContextKeyActor     = "actor"
	ContextKeyTask      = "task"
	ContextKeyProgress  = "progress"
	ContextKeyRequestID = "request_id"
)

// Header names
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	BearerPrefix        = "Bearer "
)

// Validation limits
const (
	MinPasswordLength = 5
	MaxTitleLength    = 255
	MinProgress       = 0
	MaxProgress       = 100

	// MaxTimeSpent bounds both a single time entry and a task's total
	MaxTimeSpent = 365 * 24 * time.Hour
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Token lifetimes
const (
	PasswordResetTokenTTL     = 15 * time.Minute
	EmailVerificationTokenTTL = time.Hour
)
