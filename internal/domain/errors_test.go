package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"configuration", NewConfigurationError("api key not set"), "[CONFIGURATION] api key not set"},
		{"application with code", NewApplicationError(102, "dataset not found"), "[APPLICATION] dataset not found (code 102)"},
		{"application empty message", NewApplicationError(1, ""), "[APPLICATION] unknown error (code 1)"},
		{"transport with status", NewTransportError("request failed", 502, nil), "[TRANSPORT] request failed (HTTP 502)"},
		{"transport with cause", NewTransportError("request failed", 0, errors.New("connection refused")), "[TRANSPORT] request failed: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("list documents: %w", NewApplicationError(100, "boom"))

	assert.True(t, errors.Is(err, ErrApplication))
	assert.False(t, errors.Is(err, ErrTransport))
	assert.Equal(t, KindApplication, KindOf(err))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewFileIOError("out.json", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrFileIO)
	assert.Contains(t, err.Error(), "failed to write out.json")
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}
