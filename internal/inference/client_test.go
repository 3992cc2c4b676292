package inference

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "apartment-scout/internal/common/errors"
	"apartment-scout/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestClient(t *testing.T, serverURL string, maxRetries int, timeout time.Duration) *Client {
	t.Helper()
	return NewClient(Config{
		APIKey:      "test-key",
		BaseURL:     serverURL + "/v1",
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		Timeout:     timeout,
		MaxRetries:  maxRetries,
		RateLimit:   100,
		RateBurst:   100,
	}, logger.NewTestLogger(t))
}

func completionBody(content string) string {
	resp := map[string]interface{}{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestComplete_Success(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody(`{"max_price": 1000}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0, 5*time.Second)
	content, err := client.Complete(context.Background(), "test-op", "system says", "user asks")

	require.NoError(t, err)
	assert.Equal(t, `{"max_price": 1000}`, content)

	// Strict JSON object mode must be requested on every call.
	format, ok := captured["response_format"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])

	messages, ok := captured["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]interface{})
	second := messages[1].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "system says", first["content"])
	assert.Equal(t, "user", second["role"])
	assert.Equal(t, "user asks", second["content"])
}

func TestComplete_RetriesThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error": {"message": "boom"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody(`{"ok": true}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2, 5*time.Second)
	content, err := client.Complete(context.Background(), "test-op", "s", "u")

	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, content)
	assert.Equal(t, int32(2), attempts.Load())
}

// ==========================
// Failure Handling Tests
// ==========================

func TestComplete_AllAttemptsFail(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error": {"message": "rate limited"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 1, 5*time.Second)
	content, err := client.Complete(context.Background(), "test-op", "s", "u")

	assert.Empty(t, content)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInferenceFailed, apperrors.CodeOf(err))
	assert.Equal(t, int32(2), attempts.Load())
}

func TestComplete_AttemptTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		io.WriteString(w, completionBody(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0, 50*time.Millisecond)
	_, err := client.Complete(context.Background(), "test-op", "s", "u")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInferenceTimeout, apperrors.CodeOf(err))
}

func TestComplete_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		io.WriteString(w, completionBody(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := newTestClient(t, server.URL, 3, 5*time.Second)
	_, err := client.Complete(ctx, "test-op", "s", "u")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInferenceTimeout, apperrors.CodeOf(err))
}
