package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{"config missing", NewConfigMissingError("OPENAI_API_KEY"), ErrCodeConfigMissing},
		{"synthesis", NewCriteriaSynthesisError("bad json"), ErrCodeCriteriaSynthesisFailed},
		{"matching", NewMatchingError("schema"), ErrCodeMatchingFailed},
		{"channel", NewChannelRetrievalError("@chan", "flood"), ErrCodeChannelRetrievalFailed},
		{"inference", NewInferenceError("transport"), ErrCodeInferenceFailed},
		{"inference timeout", NewInferenceTimeoutError("deadline"), ErrCodeInferenceTimeout},
		{"empty query", NewEmptySearchQueryError(), ErrCodeEmptySearchQuery},
		{"foreign error", stderrors.New("something else"), ErrCodeUnknown},
		{"nil", nil, ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, CodeOf(tt.err))
		})
	}
}

func TestCodeOf_WrappedError(t *testing.T) {
	inner := NewInferenceError("transport down")
	wrapped := fmt.Errorf("call failed: %w", inner)

	assert.Equal(t, ErrCodeInferenceFailed, CodeOf(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeInferenceFailed))
}

func TestWithCause_PreservesChain(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewMatchingError("inference call failed").WithCause(cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "MATCHING_FAILED")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewMatchingError("x")))
	assert.False(t, IsRetryable(NewConfigMissingError("BOT_TOKEN")))
	assert.False(t, IsRetryable(stderrors.New("plain")))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"synthesis", NewCriteriaSynthesisError("x"), "could not understand your preferences"},
		{"matching", NewMatchingError("x"), "could not evaluate the listings"},
		{"channel", NewChannelRetrievalError("@c", "x"), "could not read the listing channels"},
		{"empty query", NewEmptySearchQueryError(), "/search"},
		{"unknown", stderrors.New("x"), "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := UserMessage(tt.err)
			require.NotEmpty(t, msg)
			assert.Contains(t, msg, tt.contains)
		})
	}
}
