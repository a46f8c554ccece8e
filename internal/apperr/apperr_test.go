package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "direct", err: ErrInvalidURL, want: InvalidInput},
		{name: "wrapped", err: fmt.Errorf("create link: %w", ErrCodeGenerationExhausted), want: Conflict},
		{name: "not found", err: ErrNoLinksAvailable, want: NotFound},
		{name: "forbidden", err: ErrForbidden, want: Unauthorized},
		{name: "foreign error", err: errors.New("connection reset"), want: UpstreamFailure},
		{name: "nil", err: nil, want: UpstreamFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessages(t *testing.T) {
	assert.Nil(t, Messages(nil))
	assert.Equal(t, []string{"link: link not found"}, Messages(fmt.Errorf("link: %w", ErrLinkNotFound)))
	assert.Equal(t, []string{"internal server error"}, Messages(errors.New("pq: broken pipe")))

	joined := errors.Join(New(InvalidInput, "email is required"), New(InvalidInput, "password is too short"))
	assert.Equal(t, []string{"email is required", "password is too short"}, Messages(joined))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "conflict", Conflict.String())
	assert.Equal(t, "upstream_failure", UpstreamFailure.String())
}
