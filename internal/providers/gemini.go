package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	GeminiName    = "gemini"
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	geminiDefaultModel = "gemini-2.0-flash"
)

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	// Rate limiting
	RPS        float64       // Requests per second (default: 2)
	MaxRetries int           // Max retry attempts (default: 3)
	RetryDelay time.Duration // Base delay between retries (default: 1s)
}

// GeminiClient implements LLMClient using the Google Generative Language API.
type GeminiClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
	// Rate limiting
	rps        float64
	maxRetries int
	retryDelay time.Duration
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GeminiBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = geminiDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RPS == 0 {
		cfg.RPS = 2.0
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	return &GeminiClient{
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
func (c *GeminiClient) Name() string {
	return GeminiName
}

// RequestsPerSecond returns the RPS limit for rate limiting.
func (c *GeminiClient) RequestsPerSecond() float64 {
	return c.rps
}

// MaxRetries returns the maximum retry attempts.
func (c *GeminiClient) MaxRetries() int {
	return c.maxRetries
}

// RetryDelayBase returns the base delay between retries.
func (c *GeminiClient) RetryDelayBase() time.Duration {
	return c.retryDelay
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenCfg   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"` // "user" or "model"
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenCfg struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
	Error        *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Chat sends a generateContent request to the Gemini API.
func (c *GeminiClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	gReq := geminiRequest{}
	for _, m := range req.Messages {
		if m.Role == "system" {
			gReq.SystemInstruction = &geminiContent{
				Parts: []geminiPart{{Text: m.Content}},
			}
			continue
		}

		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		content := geminiContent{Role: role}
		for _, img := range m.Images {
			content.Parts = append(content.Parts, geminiPart{
				InlineData: &geminiInlineData{
					MimeType: "image/png",
					Data:     base64.StdEncoding.EncodeToString(img),
				},
			})
		}
		content.Parts = append(content.Parts, geminiPart{Text: m.Content})
		gReq.Contents = append(gReq.Contents, content)
	}

	if req.Temperature != 0 || req.MaxTokens != 0 {
		gReq.GenerationConfig = &geminiGenCfg{MaxOutputTokens: req.MaxTokens}
		if req.Temperature != 0 {
			t := req.Temperature
			gReq.GenerationConfig.Temperature = &t
		}
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  GeminiName,
		Attempts:  1,
	}

	gResp, attempts, err := c.doRequest(ctx, model, &gReq, req.Timeout)
	result.Attempts = attempts
	if err != nil {
		result.Success = false
		result.ErrorType = "http_error"
		result.ErrorMessage = err.Error()
		result.TotalTime = time.Since(start)
		return result, err
	}

	if gResp.Error != nil {
		err := fmt.Errorf("gemini error (%s): %s", gResp.Error.Status, gResp.Error.Message)
		result.Success = false
		result.ErrorType = gResp.Error.Status
		result.ErrorMessage = gResp.Error.Message
		result.TotalTime = time.Since(start)
		return result, err
	}
	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		err := fmt.Errorf("empty response from gemini")
		result.Success = false
		result.ErrorType = "empty_response"
		result.ErrorMessage = err.Error()
		result.TotalTime = time.Since(start)
		return result, err
	}

	var sb strings.Builder
	for _, part := range gResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	result.Success = true
	result.Content = sb.String()
	result.ModelUsed = model
	if gResp.ModelVersion != "" {
		result.ModelUsed = gResp.ModelVersion
	}
	result.PromptTokens = gResp.UsageMetadata.PromptTokenCount
	result.CompletionTokens = gResp.UsageMetadata.CandidatesTokenCount
	result.TotalTokens = gResp.UsageMetadata.TotalTokenCount
	result.ExecutionTime = time.Since(start)
	result.TotalTime = time.Since(start)
	return result, nil
}

// doRequest posts to /models/{model}:generateContent with retry on 429/5xx.
func (c *GeminiClient) doRequest(ctx context.Context, model string, body *geminiRequest, timeout time.Duration) (*geminiResponse, int, error) {
	client := c.client
	if timeout > 0 {
		client = &http.Client{Timeout: timeout}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(model), url.QueryEscape(c.apiKey))

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

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, attempts, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

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
			lastErr = fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(respBody))
			sleepWithJitter(ctx, c.retryDelay, attempt)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, attempts, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(respBody))
		}

		var gResp geminiResponse
		if err := json.Unmarshal(respBody, &gResp); err != nil {
			return nil, attempts, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return &gResp, attempts, nil
	}

	return nil, attempts, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}
