package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     ErrorCode
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			code:     ProtocolError,
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			code:     ProtocolError,
			expected: false,
		},
		{
			name:     "direct match",
			err:      NewProtocolError("hasNextPage true but endCursor missing"),
			code:     ProtocolError,
			expected: true,
		},
		{
			name:     "wrapped match",
			err:      fmt.Errorf("refresh failed: %w", NewErrorWithMsg(http.StatusBadGateway, PageLimitExceeded, "exceeded max pages (100)")),
			code:     PageLimitExceeded,
			expected: true,
		},
		{
			name:     "different code",
			err:      NewUnauthorizedError("unauthorized"),
			code:     ProtocolError,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError(cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "NETWORK_ERROR: connection refused", err.Error())
	assert.Equal(t, http.StatusBadGateway, err.StatusCode)

	typed, ok := AsError(fmt.Errorf("outer: %w", err))
	require.True(t, ok)
	assert.Equal(t, NetworkError, typed.ErrorCode)
}
