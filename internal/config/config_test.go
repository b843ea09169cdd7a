package config

import (
	"os"
	"strings"
	"testing"
)

func TestResolveEnvVars(t *testing.T) {
	os.Setenv("SIGNET_TEST_KEY", "sk-test-123")
	defer os.Unsetenv("SIGNET_TEST_KEY")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain value", "literal-key", "literal-key"},
		{"env reference", "${SIGNET_TEST_KEY}", "sk-test-123"},
		{"embedded reference", "prefix-${SIGNET_TEST_KEY}", "prefix-sk-test-123"},
		{"missing variable", "${SIGNET_MISSING_VAR}", ""},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveEnvVars(tt.input); got != tt.want {
				t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	for _, name := range []string{"anthropic", "gemini", "openai"} {
		if _, ok := cfg.LLMProviders[name]; !ok {
			t.Errorf("default config missing provider %q", name)
		}
	}

	if cfg.Defaults.LLMProvider != "anthropic" {
		t.Errorf("default provider = %q, want anthropic", cfg.Defaults.LLMProvider)
	}
	if cfg.Defaults.MatchThreshold != 30 {
		t.Errorf("match threshold = %d, want 30", cfg.Defaults.MatchThreshold)
	}
	if cfg.Defaults.RenderDPI != 200 {
		t.Errorf("render dpi = %d, want 200", cfg.Defaults.RenderDPI)
	}
	if len(cfg.Defaults.VQAQuestions) != 3 {
		t.Errorf("expected 3 default questions, got %d", len(cfg.Defaults.VQAQuestions))
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("server port = %q, want 8080", cfg.Server.Port)
	}
}

func TestToProviderRegistryConfig(t *testing.T) {
	os.Setenv("SIGNET_TEST_API_KEY", "resolved-key")
	defer os.Unsetenv("SIGNET_TEST_API_KEY")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"anthropic": {
				Type:      "anthropic",
				Model:     "claude-sonnet-4-20250514",
				APIKey:    "${SIGNET_TEST_API_KEY}",
				RateLimit: 2.0,
				Enabled:   true,
			},
			"disabled": {
				Type:    "openai",
				Model:   "gpt-4o",
				APIKey:  "key",
				Enabled: false,
			},
		},
	}

	rc := cfg.ToProviderRegistryConfig()

	got, ok := rc.LLMProviders["anthropic"]
	if !ok {
		t.Fatal("anthropic provider missing from registry config")
	}
	if got.APIKey != "resolved-key" {
		t.Errorf("api key = %q, want resolved-key", got.APIKey)
	}
	if got.RateLimit != 2.0 {
		t.Errorf("rate limit = %v, want 2.0", got.RateLimit)
	}

	// Disabled providers pass through; the registry decides whether to build them.
	if _, ok := rc.LLMProviders["disabled"]; !ok {
		t.Error("disabled provider should still appear in registry config")
	}
}

func TestWriteDefault(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("written config is empty")
	}
	for _, want := range []string{"llm_providers", "anthropic", "${ANTHROPIC_API_KEY}"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("written config missing %q", want)
		}
	}
}
