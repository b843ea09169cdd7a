package llmcall

import (
	"testing"
	"time"

	"github.com/signet-dev/signet/internal/providers"
)

func TestFromChatResult(t *testing.T) {
	result := &providers.ChatResult{
		Content:          "the reply",
		PromptTokens:     120,
		CompletionTokens: 40,
		ExecutionTime:    1500 * time.Millisecond,
		Provider:         "anthropic",
		ModelUsed:        "claude-sonnet-4-20250514",
		Success:          true,
	}

	call := FromChatResult(result, RecordOptions{
		DocumentID: "doc-1",
		PromptKey:  PromptKeySigningExtraction,
	})

	if call.ID == "" {
		t.Error("call has no ID")
	}
	if call.LatencyMs != 1500 {
		t.Errorf("latency = %d, want 1500", call.LatencyMs)
	}
	if call.InputTokens != 120 || call.OutputTokens != 40 {
		t.Errorf("tokens = %d/%d", call.InputTokens, call.OutputTokens)
	}
	if call.PromptKey != PromptKeySigningExtraction {
		t.Errorf("prompt key = %q", call.PromptKey)
	}
	if call.Error != "" {
		t.Errorf("error = %q, want empty on success", call.Error)
	}
}

func TestFromChatResultFailure(t *testing.T) {
	result := &providers.ChatResult{
		Provider:     "gemini",
		Success:      false,
		ErrorType:    "http_error",
		ErrorMessage: "rate limited",
	}

	call := FromChatResult(result, RecordOptions{PromptKey: PromptKeyVQA})
	if call.Success {
		t.Error("call marked successful")
	}
	if call.Error != "rate limited" {
		t.Errorf("error = %q", call.Error)
	}
}

func TestFromChatResultNil(t *testing.T) {
	if call := FromChatResult(nil, RecordOptions{}); call != nil {
		t.Error("expected nil call for nil result")
	}
}

func TestRecorderNilStore(t *testing.T) {
	r := NewRecorder(nil, nil)
	// Must be a no-op, not a panic.
	r.Record(&providers.ChatResult{Success: true}, RecordOptions{PromptKey: "x"})
	r.RecordCall(nil)
}
