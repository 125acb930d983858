package llm

import "time"

// Config for the Ollama client.
type Config struct {
	BaseURL string
	// DefaultModel is used when a request names no model
	DefaultModel string
	// ForceModel, when set, overrides whatever model a request names
	ForceModel    string
	IncludeSchema bool
	Temperature   float64
	TopP          float64
	MaxTokens     int
	// Zero means no timeout
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:11434",
		DefaultModel:  "llama2",
		IncludeSchema: true,
		Temperature:   0.1,
		TopP:          0.9,
		MaxTokens:     500,
	}
}
