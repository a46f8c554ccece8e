// Package apperr defines the error taxonomy shared by the link and token services.
package apperr

import "errors"

// Kind classifies a failure for callers that need to react to it (HTTP status, retries).
type Kind int

const (
	// UpstreamFailure is the kind of any error not produced by this package (store, identity provider).
	UpstreamFailure Kind = iota
	InvalidInput
	NotFound
	Unauthorized
	Conflict
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Conflict:
		return "conflict"
	default:
		return "upstream_failure"
	}
}

// Error is a classified, human-readable failure.
type Error struct {
	Message string
	Kind    Kind
}

func (e *Error) Error() string { return e.Message }

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Link errors
var (
	ErrInvalidURL              = New(InvalidInput, "invalid URL")
	ErrInvalidCodeLength       = New(InvalidInput, "code length must be between 1 and 32")
	ErrCodeGenerationExhausted = New(Conflict, "failed to generate a unique code, please increase the code length")
	ErrDuplicateCode           = New(Conflict, "short code already taken")
	ErrLinkNotFound            = New(NotFound, "link not found")
	ErrNoLinksAvailable        = New(NotFound, "no links found")
	ErrForbidden               = New(Unauthorized, "you are not allowed to modify this link")
)

// Auth errors
var (
	ErrInvalidInput        = New(InvalidInput, "invalid input")
	ErrInvalidCredentials  = New(InvalidInput, "invalid credentials")
	ErrInvalidToken        = New(Unauthorized, "invalid token")
	ErrInvalidRefreshToken = New(Unauthorized, "invalid refresh token")
	ErrUserNotFound        = New(NotFound, "user not found")
	ErrUserExists          = New(Conflict, "user already exists")
	ErrNoRoles             = New(Unauthorized, "user has no roles")
)

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UpstreamFailure
}

// Messages flattens err into the messages reported to API clients.
// Unclassified errors are hidden behind a generic message.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, Messages(e)...)
		}
		return out
	}
	var e *Error
	if errors.As(err, &e) {
		return []string{err.Error()}
	}
	return []string{"internal server error"}
}
