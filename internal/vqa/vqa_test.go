package vqa

import (
	"context"
	"testing"

	"github.com/signet-dev/signet/internal/providers"
)

func TestDefaultQuestions(t *testing.T) {
	qs := DefaultQuestions()
	if len(qs) != 3 {
		t.Fatalf("got %d questions, want 3", len(qs))
	}
	want := []string{
		"What is the print full name?",
		"What is the print surname?",
		"What is the official position?",
	}
	for i, q := range qs {
		if q != want[i] {
			t.Errorf("question %d = %q, want %q", i, q, want[i])
		}
	}
}

func TestAskImage(t *testing.T) {
	client := &providers.MockClient{
		ResponseFunc: func(req *providers.ChatRequest) string {
			// Last message is the user question with the image attached.
			last := req.Messages[len(req.Messages)-1]
			if len(last.Images) != 1 {
				t.Errorf("expected 1 image, got %d", len(last.Images))
			}
			return "answer to: " + last.Content
		},
	}

	p := New(Config{Client: client})
	answers := p.AskImage(context.Background(), 2, []byte("png-bytes"), []string{"Who signed?", "What date?"})

	if len(answers) != 2 {
		t.Fatalf("got %d answers, want 2", len(answers))
	}
	if answers[0].Page != 2 {
		t.Errorf("page = %d, want 2", answers[0].Page)
	}
	if answers[0].Answer != "answer to: Who signed?" {
		t.Errorf("answer = %q", answers[0].Answer)
	}
	if answers[1].Question != "What date?" {
		t.Errorf("question = %q", answers[1].Question)
	}
}

func TestAskImageUsesDefaultQuestions(t *testing.T) {
	client := &providers.MockClient{ResponseText: "John Smith"}
	p := New(Config{Client: client})

	answers := p.AskImage(context.Background(), 1, []byte("img"), nil)
	if len(answers) != 3 {
		t.Fatalf("got %d answers, want 3 defaults", len(answers))
	}
}

func TestAskImageProviderFailure(t *testing.T) {
	client := &providers.MockClient{ShouldFail: true}
	p := New(Config{Client: client})

	answers := p.AskImage(context.Background(), 1, []byte("img"), []string{"Who signed?"})
	if len(answers) != 1 {
		t.Fatalf("got %d answers, want 1", len(answers))
	}
	if answers[0].Err == "" {
		t.Error("expected error recorded in answer")
	}
	if answers[0].Answer != "" {
		t.Errorf("answer should be empty on failure, got %q", answers[0].Answer)
	}
}

func TestConfigDefaults(t *testing.T) {
	p := New(Config{Client: providers.NewMockClient()})
	if p.cfg.DPI != 200 {
		t.Errorf("dpi = %d, want 200", p.cfg.DPI)
	}
	if p.cfg.MaxTokens != defaultMaxTokens {
		t.Errorf("max tokens = %d, want %d", p.cfg.MaxTokens, defaultMaxTokens)
	}
}
