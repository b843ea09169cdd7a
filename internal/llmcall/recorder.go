package llmcall

import (
	"context"
	"log/slog"
	"time"

	"github.com/signet-dev/signet/internal/providers"
	"github.com/signet-dev/signet/internal/store"
)

// Recorder handles fire-and-forget LLM call recording.
type Recorder struct {
	store *store.Store
	log   *slog.Logger
}

// NewRecorder creates a new LLM call recorder. A nil store disables
// recording.
func NewRecorder(st *store.Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: st, log: logger}
}

// Record captures an LLM call asynchronously. Non-blocking: the write runs
// in its own goroutine and failures only log.
func (r *Recorder) Record(result *providers.ChatResult, opts RecordOptions) {
	if r == nil || r.store == nil {
		return
	}
	call := FromChatResult(result, opts)
	if call == nil {
		return
	}
	r.RecordCall(call)
}

// RecordCall captures an already-constructed Call asynchronously.
func (r *Recorder) RecordCall(call *Call) {
	if r == nil || r.store == nil || call == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := r.store.InsertLLMCall(ctx, call.toRow()); err != nil {
			r.log.Warn("failed to record llm call",
				"prompt_key", call.PromptKey,
				"provider", call.Provider,
				"error", err)
		}
	}()
}
