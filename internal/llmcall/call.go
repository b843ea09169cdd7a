// Package llmcall records LLM API calls for traceability. Every provider
// call made by the server is captured with its prompt key, response, and
// token usage.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/providers"
	"github.com/signet-dev/signet/internal/store"
)

// Prompt keys used by the built-in pipelines.
const (
	PromptKeySigningExtraction = "signing_extraction"
	PromptKeyVQA               = "vqa"
)

// Call represents a recorded LLM API call.
type Call struct {
	ID        string
	Timestamp time.Time
	LatencyMs int

	// Context references
	DocumentID   string
	ExtractionID string

	// Prompt traceability
	PromptKey string

	// Model info
	Provider string
	Model    string

	// Token usage
	InputTokens  int
	OutputTokens int

	// Response
	Response string

	// Status
	Success bool
	Error   string
}

// RecordOptions provides context for recording an LLM call.
type RecordOptions struct {
	DocumentID   string
	ExtractionID string
	PromptKey    string
}

// FromChatResult creates a Call from a ChatResult. Returns nil if result is
// nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	call := &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now().UTC(),
		LatencyMs:    int(result.ExecutionTime.Milliseconds()),
		DocumentID:   opts.DocumentID,
		ExtractionID: opts.ExtractionID,
		PromptKey:    opts.PromptKey,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		Response:     result.Content,
		Success:      result.Success,
	}
	if !result.Success {
		call.Error = result.ErrorMessage
	}
	return call
}

func (c *Call) toRow() *store.LLMCallRow {
	return &store.LLMCallRow{
		ID:           c.ID,
		Timestamp:    c.Timestamp,
		LatencyMs:    c.LatencyMs,
		DocumentID:   c.DocumentID,
		ExtractionID: c.ExtractionID,
		PromptKey:    c.PromptKey,
		Provider:     c.Provider,
		Model:        c.Model,
		InputTokens:  c.InputTokens,
		OutputTokens: c.OutputTokens,
		Response:     c.Response,
		Success:      c.Success,
		Error:        c.Error,
	}
}
