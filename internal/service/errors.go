package service

import "errors"

// Client-facing failures. Handlers map each to a status code and message.
var (
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrPasswordMismatch    = errors.New("password does not match")
	ErrAccountNotFound     = errors.New("no account for credentials")

	ErrFieldsRequired = errors.New("all fields are required")
	ErrInvalidName    = errors.New("invalid name")
	ErrInvalidPhone   = errors.New("invalid phone number")
	ErrEmailTaken     = errors.New("email already registered")
	ErrUserNotFound   = errors.New("user not found")
	ErrNoUsers        = errors.New("no users")

	ErrBriefRequired  = errors.New("query brief is required")
	ErrAnswerRequired = errors.New("query id and answer are required")
	ErrQueryNotFound  = errors.New("query not found")

	ErrDoubtRequired = errors.New("no doubt provided")
	ErrRateLimited   = errors.New("rate limit exceeded")
)
