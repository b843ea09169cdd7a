package signing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/providers"
)

const (
	defaultMaxTokens = 4000
	defaultTimeout   = 120 * time.Second
)

// Config controls a single extraction run.
type Config struct {
	// Model overrides the provider's configured model when non-empty.
	Model string
	// MaxTokens caps the completion size. Defaults to 4000.
	MaxTokens int
	// Timeout bounds the provider call. Defaults to 120s.
	Timeout time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Extractor runs the signing-rule extraction prompt against an LLM client.
type Extractor struct {
	cfg Config
	log *slog.Logger
}

// NewExtractor creates an extractor with defaults filled in.
func NewExtractor(cfg Config) *Extractor {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{cfg: cfg, log: log}
}

// Extract sends the document text to the LLM and returns the parsed result.
// Failures never surface as a Go error: the contract is that every failure
// mode collapses into the error-shaped Result so callers can render it.
func (e *Extractor) Extract(ctx context.Context, client providers.LLMClient, documentText string) *Result {
	requestID := uuid.New().String()

	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "user", Content: BuildPrompt(documentText)},
		},
		Model:     e.cfg.Model,
		MaxTokens: e.cfg.MaxTokens,
		Timeout:   e.cfg.Timeout,
		RequestID: requestID,
	}

	result, err := client.Chat(ctx, req)
	if err != nil {
		e.log.Error("extraction chat failed", "provider", client.Name(), "request_id", requestID, "error", err)
		return ErrorResult(fmt.Sprintf("Error processing document: %v", err))
	}
	if !result.Success {
		e.log.Error("extraction chat unsuccessful",
			"provider", result.Provider,
			"request_id", requestID,
			"error_type", result.ErrorType,
			"error", result.ErrorMessage)
		return ErrorResult(fmt.Sprintf("Error processing document: %s", result.ErrorMessage))
	}

	parsed, err := providers.ParseStructuredJSON(result.Content)
	if err != nil {
		e.log.Error("extraction output not JSON", "request_id", requestID, "error", err)
		return ErrorResult(fmt.Sprintf("Error processing document: %v", err))
	}
	if err := providers.ValidateStructuredJSON(resultSchema, parsed); err != nil {
		e.log.Error("extraction output failed schema validation", "request_id", requestID, "error", err)
		return ErrorResult(fmt.Sprintf("Error processing document: %v", err))
	}

	var out Result
	if err := json.Unmarshal(parsed, &out); err != nil {
		return ErrorResult(fmt.Sprintf("Error processing document: %v", err))
	}

	out.Normalize()
	if out.Status == "" {
		out.Status = "success"
	}

	e.log.Info("extraction complete",
		"provider", result.Provider,
		"model", result.ModelUsed,
		"request_id", requestID,
		"total_rules", out.TotalRules,
		"approved_count", out.ApprovedCount,
		"sections", len(out.SectionsFound))

	return &out
}
