package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL проверяет, что ссылка абсолютная, со схемой http или https и с хостом
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if !u.IsAbs() {
		return fmt.Errorf("url must be absolute")
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("url must contain a host")
	}

	return nil
}
