package validation

import (
	"fmt"

	"github.com/iudanet/shortify/internal/models"
)

// ValidateRole проверяет, что роль известна серверу
func ValidateRole(role string) error {
	switch role {
	case models.RoleUser, models.RoleAdmin:
		return nil
	default:
		return fmt.Errorf("unknown role %q", role)
	}
}
