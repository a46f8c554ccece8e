package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that no matching refresh token was found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrLinkNotFound indicates that link was not found or is deleted
	ErrLinkNotFound = errors.New("link not found")

	// ErrNoLinks indicates that a list query matched zero rows
	ErrNoLinks = errors.New("no links found")

	// ErrDuplicateCode indicates a unique violation on the active short code
	ErrDuplicateCode = errors.New("short code already exists")
)
