package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeErrorShapes(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{
			name:     "bare string body",
			status:   400,
			body:     `"something went wrong"`,
			expected: "something went wrong",
		},
		{
			name:     "plain text body",
			status:   502,
			body:     `upstream unavailable`,
			expected: "upstream unavailable",
		},
		{
			name:     "message field",
			status:   400,
			body:     `{"message": "email already in use"}`,
			expected: "email already in use",
		},
		{
			name:     "detail field as string",
			status:   403,
			body:     `{"detail": "account suspended"}`,
			expected: "account suspended",
		},
		{
			name:     "detail field as object",
			status:   422,
			body:     `{"detail": {"code": 17, "hint": "try later"}}`,
			expected: `{"code": 17, "hint": "try later"}`,
		},
		{
			name:     "error field",
			status:   400,
			body:     `{"error": "invalid request"}`,
			expected: "invalid request",
		},
		{
			name:     "errors map takes first field's first message",
			status:   422,
			body:     `{"errors": {"email": ["must be valid", "must be unique"], "phone": ["too short"]}}`,
			expected: "must be valid",
		},
		{
			name:     "errors map flattens one-element list",
			status:   422,
			body:     `{"errors": {"phone": ["too short"]}}`,
			expected: "too short",
		},
		{
			name:     "errors map with bare string value",
			status:   422,
			body:     `{"errors": {"phone": "too short"}}`,
			expected: "too short",
		},
		{
			name:     "message wins over detail",
			status:   400,
			body:     `{"detail": "second", "message": "first"}`,
			expected: "first",
		},
		{
			name:     "empty body falls back to generic message",
			status:   500,
			body:     ``,
			expected: genericErrorMessage,
		},
		{
			name:     "unrecognized object falls back to generic message",
			status:   500,
			body:     `{"weird": true}`,
			expected: genericErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := normalizeError(tt.status, []byte(tt.body), nil)
			assert.Equal(t, tt.expected, err.Message)
			assert.NotEmpty(t, err.Message)
			assert.Equal(t, tt.status, err.Status)
		})
	}
}

func TestNormalizeErrorTransportFallback(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := normalizeError(0, nil, cause)
	assert.Equal(t, "dial tcp: connection refused", err.Message)
	assert.ErrorIs(t, err, cause)
}
