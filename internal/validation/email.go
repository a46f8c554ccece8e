package validation

import (
	"fmt"
	"net/mail"
	"strings"
)

// MaxEmailLen максимальная длина email (RFC 5321)
const MaxEmailLen = 254

// ValidateEmail проверяет, что строка является одиночным адресом без display name
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndexByte(email, '@'):], ".") {
		return fmt.Errorf("invalid email address")
	}

	return nil
}
