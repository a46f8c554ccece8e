package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimaryRole(t *testing.T) {
	tests := []struct {
		name  string
		want  string
		roles []string
	}{
		{name: "no roles", roles: nil, want: ""},
		{name: "user only", roles: []string{RoleUser}, want: RoleUser},
		{name: "promoted after registration", roles: []string{RoleUser, RoleAdmin}, want: RoleAdmin},
		{name: "admin only", roles: []string{RoleAdmin}, want: RoleAdmin},
		{name: "unknown role kept", roles: []string{"Auditor"}, want: "Auditor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrimaryRole(tt.roles))
		})
	}
}
