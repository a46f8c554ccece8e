// Package validation checks user supplied registration and link input.
package validation

import (
	"fmt"
	"regexp"
)

// UsernamePattern: латинские буквы, цифры, '.', '-', '_'; начинается с буквы или цифры
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
)

// ValidateUsername checks the display name chosen at registration
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("username cannot be empty")
	case len(username) < MinUsernameLen:
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	case len(username) > MaxUsernameLen:
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	case !UsernamePattern.MatchString(username):
		return fmt.Errorf("username can only contain letters, numbers, dots, dashes and underscores and must start with a letter or number")
	}

	return nil
}
