package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Listing errors
	ErrListingNotFound = errors.New("listing not found")
	ErrTooManyImages   = errors.New("a maximum of 4 images is allowed")
	ErrBadImageType    = errors.New("only JPG and PNG images are accepted")

	// Messaging errors
	ErrThreadNotFound = errors.New("thread not found")
	ErrSelfMessage    = errors.New("you cannot message yourself")
	ErrEmptyBody      = errors.New("message body cannot be empty")
	ErrConflict       = errors.New("conflicting write") // recovered internally, never surfaced

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrUserNotFound = errors.New("user not found")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")

	// Infrastructure errors
	ErrUnavailable = errors.New("service temporarily unavailable")
)
