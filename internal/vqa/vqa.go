// Package vqa asks questions about rendered PDF pages using a
// vision-capable LLM provider.
package vqa

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/document"
	"github.com/signet-dev/signet/internal/providers"
)

const (
	defaultMaxTokens = 512
	defaultTimeout   = 60 * time.Second
)

const systemPrompt = `You are a document analysis assistant. Answer the question about
the page image concisely. If the answer is not visible on the page, reply "not found".`

// DefaultQuestions returns the signatory questions asked when the caller
// provides none.
func DefaultQuestions() []string {
	return []string{
		"What is the print full name?",
		"What is the print surname?",
		"What is the official position?",
	}
}

// Answer is one question's result for one page.
type Answer struct {
	Page     int    `json:"page"`
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Err      string `json:"error,omitempty"`
}

// Config configures a Pipeline.
type Config struct {
	Client providers.LLMClient
	// Model overrides the provider's configured model when non-empty.
	Model string
	// DPI is the page render resolution. Defaults to document.DefaultDPI.
	DPI int
	// MaxTokens caps each answer. Defaults to 512.
	MaxTokens int
	// Timeout bounds each provider call. Defaults to 60s.
	Timeout time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Pipeline renders pages and queries the provider page by page.
type Pipeline struct {
	cfg     Config
	log     *slog.Logger
	limiter *providers.RateLimiter
}

// New creates a pipeline with defaults filled in.
func New(cfg Config) *Pipeline {
	if cfg.DPI <= 0 {
		cfg.DPI = document.DefaultDPI
	}
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

	// One question per page adds up fast; pace calls to the provider's limit.
	var rps float64
	if cfg.Client != nil {
		rps = cfg.Client.RequestsPerSecond()
	}
	return &Pipeline{cfg: cfg, log: log, limiter: providers.NewRateLimiter(rps)}
}

// Ask renders every page of the PDF and asks each question about each page.
// Per-question provider failures are recorded in the answer's Err field; only
// rendering failures and context cancellation abort the run.
func (p *Pipeline) Ask(ctx context.Context, pdfPath string, questions []string) ([]Answer, error) {
	if len(questions) == 0 {
		questions = DefaultQuestions()
	}

	pages, err := document.RenderPages(ctx, pdfPath, p.cfg.DPI)
	if err != nil {
		return nil, fmt.Errorf("render pages: %w", err)
	}

	p.log.Info("vqa start", "path", pdfPath, "pages", len(pages), "questions", len(questions))

	answers := make([]Answer, 0, len(pages)*len(questions))
	for i, img := range pages {
		pageNum := i + 1
		for _, q := range questions {
			if err := ctx.Err(); err != nil {
				return answers, err
			}
			answers = append(answers, p.askPage(ctx, pageNum, img, q))
		}
	}
	return answers, nil
}

// AskImage asks the questions about a single already-rendered page image.
func (p *Pipeline) AskImage(ctx context.Context, page int, img []byte, questions []string) []Answer {
	if len(questions) == 0 {
		questions = DefaultQuestions()
	}
	answers := make([]Answer, 0, len(questions))
	for _, q := range questions {
		answers = append(answers, p.askPage(ctx, page, img, q))
	}
	return answers
}

func (p *Pipeline) askPage(ctx context.Context, page int, img []byte, question string) Answer {
	ans := Answer{Page: page, Question: question}

	if err := p.limiter.Wait(ctx); err != nil {
		ans.Err = err.Error()
		return ans
	}

	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: question, Images: [][]byte{img}},
		},
		Model:     p.cfg.Model,
		MaxTokens: p.cfg.MaxTokens,
		Timeout:   p.cfg.Timeout,
		RequestID: uuid.New().String(),
	}

	result, err := p.cfg.Client.Chat(ctx, req)
	if err != nil {
		p.log.Warn("vqa question failed", "page", page, "question", question, "error", err)
		ans.Err = err.Error()
		return ans
	}
	if !result.Success {
		ans.Err = result.ErrorMessage
		return ans
	}

	ans.Answer = result.Content
	return ans
}
