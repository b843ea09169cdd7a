package config

// Config holds signet configuration.
// Stored at: ./config.yaml or ~/.signet/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	OCR          OCRCfg                    `mapstructure:"ocr" yaml:"ocr"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "anthropic", "gemini", "openai"
	Model     string  `mapstructure:"model" yaml:"model"`           // Default model name
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// OCRCfg configures the local OCR fallback for scanned pages.
type OCRCfg struct {
	Enabled   bool     `mapstructure:"enabled" yaml:"enabled"`
	Languages []string `mapstructure:"languages" yaml:"languages"`
}

// DefaultsCfg specifies default selections for the pipelines.
type DefaultsCfg struct {
	LLMProvider    string   `mapstructure:"llm_provider" yaml:"llm_provider"`       // Default LLM provider name
	VQAQuestions   []string `mapstructure:"vqa_questions" yaml:"vqa_questions"`     // Default per-page questions
	MatchThreshold int      `mapstructure:"match_threshold" yaml:"match_threshold"` // Image similarity threshold
	RenderDPI      int      `mapstructure:"render_dpi" yaml:"render_dpi"`           // PDF page render resolution
}

// ServerCfg holds HTTP server defaults.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"anthropic": {
				Type:      "anthropic",
				Model:     "claude-sonnet-4-20250514",
				APIKey:    "${ANTHROPIC_API_KEY}",
				RateLimit: 5.0,
				Enabled:   true,
			},
			"gemini": {
				Type:      "gemini",
				Model:     "gemini-2.0-flash",
				APIKey:    "${GEMINI_API_KEY}",
				RateLimit: 2.0,
				Enabled:   true,
			},
			"openai": {
				Type:      "openai",
				Model:     "gpt-4o",
				APIKey:    "${OPENAI_API_KEY}",
				RateLimit: 8.0,
				Enabled:   true,
			},
		},
		OCR: OCRCfg{
			Enabled:   false,
			Languages: []string{"eng"},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "anthropic",
			VQAQuestions: []string{
				"What is the print full name?",
				"What is the print surname?",
				"What is the official position?",
			},
			MatchThreshold: 30,
			RenderDPI:      200,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}
