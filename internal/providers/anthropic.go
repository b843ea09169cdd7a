package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	AnthropicName    = "anthropic"
	AnthropicBaseURL = "https://api.anthropic.com/v1"
	AnthropicVersion = "2023-06-01"

	anthropicDefaultModel     = "claude-sonnet-4-20250514"
	anthropicDefaultMaxTokens = 4096
)

// AnthropicConfig holds configuration for the Anthropic client.
type AnthropicConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	// Rate limiting
	RPS        float64       // Requests per second (default: 5)
	MaxRetries int           // Max retry attempts (default: 3)
	RetryDelay time.Duration // Base delay between retries (default: 1s)
}

// AnthropicClient implements LLMClient using the Anthropic Messages API.
type AnthropicClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
	// Rate limiting
	rps        float64
	maxRetries int
	retryDelay time.Duration
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = AnthropicBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = anthropicDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RPS == 0 {
		cfg.RPS = 5.0
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	return &AnthropicClient{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		rps:        cfg.RPS,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

// Name returns the client identifier.
func (c *AnthropicClient) Name() string {
	return AnthropicName
}

// RequestsPerSecond returns the RPS limit for rate limiting.
func (c *AnthropicClient) RequestsPerSecond() float64 {
	return c.rps
}

// MaxRetries returns the maximum retry attempts.
func (c *AnthropicClient) MaxRetries() int {
	return c.maxRetries
}

// RetryDelayBase returns the base delay between retries.
func (c *AnthropicClient) RetryDelayBase() time.Duration {
	return c.retryDelay
}

// anthropicRequest is the Messages API request body.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []anthropicContent
}

type anthropicContent struct {
	Type   string           `json:"type"` // "text" or "image"
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"` // "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends a chat completion request to the Anthropic Messages API.
func (c *AnthropicClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	aReq := anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
	}
	if req.Temperature != 0 {
		t := req.Temperature
		aReq.Temperature = &t
	}

	// Anthropic takes the system prompt as a top-level field
	for _, m := range req.Messages {
		if m.Role == "system" {
			aReq.System = m.Content
			continue
		}

		aMsg := anthropicMessage{Role: m.Role}
		if len(m.Images) > 0 {
			content := make([]anthropicContent, 0, len(m.Images)+1)
			for _, img := range m.Images {
				content = append(content, anthropicContent{
					Type: "image",
					Source: &anthropicSource{
						Type:      "base64",
						MediaType: "image/png",
						Data:      base64.StdEncoding.EncodeToString(img),
					},
				})
			}
			content = append(content, anthropicContent{Type: "text", Text: m.Content})
			aMsg.Content = content
		} else {
			aMsg.Content = m.Content
		}
		aReq.Messages = append(aReq.Messages, aMsg)
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  AnthropicName,
		Attempts:  1,
	}

	aResp, attempts, err := c.doRequest(ctx, &aReq, req.Timeout)
	result.Attempts = attempts
	if err != nil {
		result.Success = false
		result.ErrorType = "http_error"
		result.ErrorMessage = err.Error()
		result.TotalTime = time.Since(start)
		return result, err
	}

	if aResp.Error != nil {
		err := fmt.Errorf("anthropic error: %s: %s", aResp.Error.Type, aResp.Error.Message)
		result.Success = false
		result.ErrorType = aResp.Error.Type
		result.ErrorMessage = aResp.Error.Message
		result.TotalTime = time.Since(start)
		return result, err
	}
	if len(aResp.Content) == 0 {
		err := fmt.Errorf("empty response from anthropic")
		result.Success = false
		result.ErrorType = "empty_response"
		result.ErrorMessage = err.Error()
		result.TotalTime = time.Since(start)
		return result, err
	}

	result.Success = true
	result.Content = aResp.Content[0].Text
	result.ModelUsed = aResp.Model
	result.PromptTokens = aResp.Usage.InputTokens
	result.CompletionTokens = aResp.Usage.OutputTokens
	result.TotalTokens = aResp.Usage.InputTokens + aResp.Usage.OutputTokens
	result.ExecutionTime = time.Since(start)
	result.TotalTime = time.Since(start)
	return result, nil
}

// doRequest posts to /messages with retry on 429/5xx.
func (c *AnthropicClient) doRequest(ctx context.Context, body *anthropicRequest, timeout time.Duration) (*anthropicResponse, int, error) {
	client := c.client
	if timeout > 0 {
		client = &http.Client{Timeout: timeout}
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		attempts = attempt + 1
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}

		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, attempts, fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, attempts, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", AnthropicVersion)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			sleepWithJitter(ctx, c.retryDelay, attempt)
			continue
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			sleepWithJitter(ctx, c.retryDelay, attempt)
			continue
		}

		if retryableStatus(resp.StatusCode) {
			lastErr = fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(respBody))
			sleepWithJitter(ctx, c.retryDelay, attempt)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, attempts, fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(respBody))
		}

		var aResp anthropicResponse
		if err := json.Unmarshal(respBody, &aResp); err != nil {
			return nil, attempts, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return &aResp, attempts, nil
	}

	return nil, attempts, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// retryableStatus returns true for status codes worth retrying.
func retryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests:
		return true
	case 529: // Anthropic overloaded
		return true
	default:
		return statusCode >= 500
	}
}

// sleepWithJitter waits retryDelay * 2^attempt plus up to 25% jitter,
// returning early on context cancellation.
func sleepWithJitter(ctx context.Context, base time.Duration, attempt int) {
	delay := base << attempt
	delay += time.Duration(rand.Int63n(int64(delay)/4 + 1))
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}
