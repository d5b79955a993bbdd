// Package content generates lesson material and quiz questions with an
// OpenAI-compatible chat-completions API, falling back to deterministic
// built-in content when the model is unreachable.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"skillsprint/core"
)

// maxResponseSize limits the response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// RetryConfig holds retry configuration for generation requests.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts per request.
	MaxAttempts int

	// BackoffBase is the initial backoff duration.
	BackoffBase time.Duration

	// BackoffMultiplier is applied to backoff on each retry.
	BackoffMultiplier float64

	// MaxBackoff caps the maximum backoff duration.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       500 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        10 * time.Second,
	}
}

// Config holds the chat-completions endpoint configuration.
type Config struct {
	BaseURL string // e.g. https://api.groq.com/openai/v1
	Model   string
	APIKey  string
	Timeout time.Duration
}

// DefaultConfig returns the default Groq-hosted model configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.groq.com/openai/v1",
		Model:   "llama3-8b-8192",
		Timeout: 30 * time.Second,
	}
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
	Stream      bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Client calls a chat-completions endpoint with retry and backoff.
type Client struct {
	config      Config
	httpClient  *http.Client
	retryConfig RetryConfig
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(client *Client) {
		client.retryConfig = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates a content client.
func NewClient(config Config, opts ...Option) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	c := &Client{
		config:      config,
		retryConfig: DefaultRetryConfig(),
		httpClient:  &http.Client{Timeout: config.Timeout},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lesson returns Markdown lesson material for a task. Generation failures
// degrade to the built-in fallback lesson rather than erroring.
func (c *Client) Lesson(ctx context.Context, topic string, typ core.TaskType, skill string, level core.Level) string {
	raw, err := c.complete(ctx, []Message{
		{Role: "system", Content: lessonSystemPrompt},
		{Role: "user", Content: lessonPrompt(topic, typ, skill, level)},
	}, 0.7, 2000)
	if err != nil || raw == "" {
		c.logger.Warn("lesson generation failed, using fallback",
			"topic", topic, "skill", skill, "error", err)
		return FallbackLesson(topic, typ, skill)
	}
	return raw
}

// Questions returns 3 to 5 quiz questions for a task. Invalid model output
// and transport failures degrade to the built-in fallback questions.
func (c *Client) Questions(ctx context.Context, topic, skill string, level core.Level) []core.Question {
	raw, err := c.complete(ctx, []Message{
		{Role: "system", Content: quizSystemPrompt},
		{Role: "user", Content: quizPrompt(topic, skill, level)},
	}, 0.5, 1500)
	if err != nil {
		c.logger.Warn("quiz generation failed, using fallback",
			"topic", topic, "skill", skill, "error", err)
		return FallbackQuestions(topic, skill)
	}
	questions, err := ParseQuestions(raw)
	if err != nil {
		c.logger.Warn("quiz response unparseable, using fallback",
			"topic", topic, "skill", skill, "error", err)
		return FallbackQuestions(topic, skill)
	}
	return questions
}

// complete runs the retry loop around a single chat-completions call.
func (c *Client) complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
		out, err := c.doRequest(ctx, messages, temperature, maxTokens)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if IsFatal(err) {
			return "", err
		}
		if attempt < c.retryConfig.MaxAttempts {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debug("generation request failed, retrying",
				"attempt", attempt,
				"max_attempts", c.retryConfig.MaxAttempts,
				"backoff", backoff,
				"error", err)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return "", lastErr
}

// calculateBackoff computes exponential backoff with jitter. Jitter prevents
// thundering herd when multiple clients retry simultaneously.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= c.retryConfig.BackoffMultiplier
	}
	backoff := time.Duration(float64(c.retryConfig.BackoffBase) * multiplier)
	if backoff > c.retryConfig.MaxBackoff {
		backoff = c.retryConfig.MaxBackoff
	}
	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}

func (c *Client) doRequest(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		TopP:        1,
	})
	if err != nil {
		return "", NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	url := c.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", NewTransientError(fmt.Errorf("read response body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyHTTPError(resp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", NewTransientError(fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", NewTransientError(fmt.Errorf("response has no choices"))
	}
	return parsed.Choices[0].Message.Content, nil
}

// classifyHTTPError determines if an HTTP error is transient or fatal.
func classifyHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}
	err := fmt.Errorf("chat API error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewTransientError(err)
	case statusCode >= 500:
		return NewTransientError(err)
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden,
		statusCode == http.StatusBadRequest:
		return NewFatalError(err)
	default:
		return NewFatalError(err)
	}
}
