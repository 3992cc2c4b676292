// Package inference wraps the OpenAI chat-completions API behind the single
// strict-JSON Complete operation the pipeline needs.
package inference

import (
	"context"
	"errors"
	"math/rand"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "apartment-scout/internal/common/errors"
	"apartment-scout/internal/common/logger"
	"apartment-scout/internal/common/metrics"
)

type Config struct {
	APIKey      string
	BaseURL     string // empty means the public API
	Model       string
	Temperature float32
	Timeout     time.Duration // per attempt
	MaxRetries  int
	RateLimit   float64 // requests per second
	RateBurst   int
}

type Client struct {
	api     *openai.Client
	config  Config
	limiter *rate.Limiter
	logger  logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  log.With(map[string]interface{}{"component": "inference"}),
	}
}

// Complete performs one chat completion in strict JSON object mode and returns
// the raw response content. The operation label only feeds logs and metrics.
func (c *Client) Complete(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", apperrors.NewInferenceTimeoutError("rate limiter wait interrupted").WithCause(err)
	}

	start := time.Now()
	defer func() {
		metrics.InferenceRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	request := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: c.config.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var resp openai.ChatCompletionResponse
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt)*time.Second + time.Duration(rand.Intn(1000))*time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", apperrors.NewInferenceTimeoutError("deadline exceeded during backoff").WithCause(ctx.Err())
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		resp, lastErr = c.api.CreateChatCompletion(attemptCtx, request)
		cancel()

		// If the outer context expired, report a timeout instead of retrying.
		if ctx.Err() != nil {
			return "", apperrors.NewInferenceTimeoutError("deadline exceeded").WithCause(ctx.Err())
		}

		if lastErr == nil && len(resp.Choices) > 0 {
			return resp.Choices[0].Message.Content, nil
		}

		if lastErr == nil {
			lastErr = errors.New("response contained no choices")
		}

		c.logger.Warn("inference attempt failed", map[string]interface{}{
			"operation": operation,
			"attempt":   attempt + 1,
			"error":     lastErr.Error(),
		})
	}

	if errors.Is(lastErr, context.DeadlineExceeded) {
		return "", apperrors.NewInferenceTimeoutError("every attempt timed out").WithCause(lastErr)
	}
	return "", apperrors.NewInferenceError("no successful response after retries").WithCause(lastErr)
}
