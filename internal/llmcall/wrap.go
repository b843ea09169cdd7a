package llmcall

import (
	"context"
	"time"

	"github.com/signet-dev/signet/internal/providers"
)

// recordingClient wraps an LLMClient and records every chat call.
type recordingClient struct {
	inner    providers.LLMClient
	recorder *Recorder
	opts     RecordOptions
}

// WrapClient returns a client that records each call through recorder with
// the given options. A nil recorder returns the inner client unchanged.
func WrapClient(inner providers.LLMClient, recorder *Recorder, opts RecordOptions) providers.LLMClient {
	if recorder == nil {
		return inner
	}
	return &recordingClient{inner: inner, recorder: recorder, opts: opts}
}

func (c *recordingClient) Chat(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResult, error) {
	result, err := c.inner.Chat(ctx, req)
	if result != nil {
		c.recorder.Record(result, c.opts)
	}
	return result, err
}

func (c *recordingClient) Name() string                  { return c.inner.Name() }
func (c *recordingClient) RequestsPerSecond() float64    { return c.inner.RequestsPerSecond() }
func (c *recordingClient) MaxRetries() int               { return c.inner.MaxRetries() }
func (c *recordingClient) RetryDelayBase() time.Duration { return c.inner.RetryDelayBase() }
