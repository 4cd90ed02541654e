package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := New(CodeNotFound, "registry", "package 'leftpadx' not found", nil)
	assert.Equal(t, "[registry:NOT_FOUND] package 'leftpadx' not found", err.Error())

	wrapped := New(CodeUpstreamUnavailable, "search", "search backend unreachable", fmt.Errorf("dial tcp: connection refused"))
	assert.Contains(t, wrapped.Error(), "[search:UPSTREAM_UNAVAILABLE]")
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := New(CodeInternalError, "tools", "handler failed", cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestError_Is(t *testing.T) {
	err := New(CodeRateLimited, "github", "rate limit exceeded", nil)
	assert.ErrorIs(t, err, New(CodeRateLimited, "other", "different message", nil))
	assert.NotErrorIs(t, err, New(CodeNotFound, "github", "rate limit exceeded", nil))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"structured", New(CodeUpstreamTimeout, "fetch", "deadline exceeded", nil), CodeUpstreamTimeout},
		{"wrapped", fmt.Errorf("outer: %w", New(CodeNotFound, "registry", "missing", nil)), CodeNotFound},
		{"plain", fmt.Errorf("plain failure"), CodeUnknown},
		{"nil", nil, CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", New(CodeUpstreamMalformed, "search", "no results key", nil))
	assert.True(t, IsCode(err, CodeUpstreamMalformed))
	assert.False(t, IsCode(err, CodeUpstreamTimeout))
}
