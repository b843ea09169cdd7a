package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGeminiClient_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key query param")
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Contents) != 1 {
			t.Errorf("expected 1 content, got %d", len(req.Contents))
		}

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "gemini says hi"}},
				},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]int{
				"promptTokenCount":     7,
				"candidatesTokenCount": 3,
				"totalTokenCount":      10,
			},
		})
	}))
	defer srv.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})
	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if result.Content != "gemini says hi" {
		t.Errorf("unexpected content: %q", result.Content)
	}
	if result.TotalTokens != 10 {
		t.Errorf("unexpected total tokens: %d", result.TotalTokens)
	}
	if result.Provider != GeminiName {
		t.Errorf("unexpected provider: %s", result.Provider)
	}
}

func TestGeminiClient_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "k", BaseURL: srv.URL, RetryDelay: time.Millisecond})
	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
	if result.ErrorType != "empty_response" {
		t.Errorf("unexpected error type: %s", result.ErrorType)
	}
}

func TestGeminiClient_SystemInstruction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.SystemInstruction == nil || len(req.SystemInstruction.Parts) == 0 {
			t.Error("system message should map to systemInstruction")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{"parts": []map[string]any{{"text": "ok"}}},
			}},
		})
	}))
	defer srv.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "k", BaseURL: srv.URL})
	if _, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "be helpful"},
			{Role: "user", Content: "hi"},
		},
	}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
}
