package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		errMsg   string
		wantErr  bool
	}{
		{
			name:     "valid password - exactly 8 chars",
			password: "passw0rd",
			wantErr:  false,
		},
		{
			name:     "valid password - long",
			password: "super_secret_password_123",
			wantErr:  false,
		},
		{
			name:     "valid password - with special chars",
			password: "P@ssw0rd!@#$",
			wantErr:  false,
		},
		{
			name:     "valid password - unicode",
			password: "пароль12",
			wantErr:  false,
		},
		{
			name:     "invalid - empty password",
			password: "",
			wantErr:  true,
			errMsg:   "password cannot be empty",
		},
		{
			name:     "invalid - too short (7 chars)",
			password: "passw0r",
			wantErr:  true,
			errMsg:   "must be at least 8 characters",
		},
		{
			name:     "invalid - too long",
			password: strings.Repeat("a", 73),
			wantErr:  true,
			errMsg:   "must not exceed 72 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
