package providers

import (
	"sort"
	"testing"
)

func testRegistryConfig() RegistryConfig {
	return RegistryConfig{
		LLMProviders: map[string]LLMProviderConfig{
			"anthropic": {Type: "anthropic", Model: "claude-sonnet-4-20250514", APIKey: "key-a", Enabled: true},
			"gemini":    {Type: "gemini", Model: "gemini-2.0-flash", APIKey: "key-g", Enabled: true},
			"disabled":  {Type: "anthropic", APIKey: "key-d", Enabled: false},
			"no-key":    {Type: "gemini", Enabled: true},
		},
	}
}

func TestNewRegistryFromConfig(t *testing.T) {
	r := NewRegistryFromConfig(testRegistryConfig())

	names := r.List()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "anthropic" || names[1] != "gemini" {
		t.Fatalf("expected [anthropic gemini], got %v", names)
	}

	if _, err := r.Get("anthropic"); err != nil {
		t.Errorf("Get(anthropic) error = %v", err)
	}
	if _, err := r.Get("disabled"); err == nil {
		t.Error("disabled provider should not be registered")
	}
	if _, err := r.Get("no-key"); err == nil {
		t.Error("provider without API key should not be registered")
	}
}

func TestRegistry_Reload(t *testing.T) {
	cfg := testRegistryConfig()
	r := NewRegistryFromConfig(cfg)

	before, _ := r.Get("anthropic")

	// Unchanged settings keep the same client instance
	r.Reload(cfg)
	after, _ := r.Get("anthropic")
	if before != after {
		t.Error("unchanged provider should not be recreated on reload")
	}

	// Changed key recreates the client
	cfg.LLMProviders["anthropic"] = LLMProviderConfig{
		Type: "anthropic", Model: "claude-sonnet-4-20250514", APIKey: "rotated", Enabled: true,
	}
	r.Reload(cfg)
	rotated, _ := r.Get("anthropic")
	if rotated == before {
		t.Error("provider with changed API key should be recreated")
	}

	// Removed provider is unregistered
	delete(cfg.LLMProviders, "gemini")
	r.Reload(cfg)
	if r.Has("gemini") {
		t.Error("removed provider should be unregistered")
	}
}

func TestNewClientFromConfig_UnknownType(t *testing.T) {
	if c := NewClientFromConfig(LLMProviderConfig{Type: "carrier-pigeon", APIKey: "k"}); c != nil {
		t.Errorf("unknown type should return nil, got %T", c)
	}
}
