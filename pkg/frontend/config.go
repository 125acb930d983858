package frontend

import "time"

type Config struct {
	// Base URL of the poppy API
	BackendURL string
	// Ollama base URL, used to list installed models
	OllamaURL      string
	DefaultModel   string
	BackendTimeout time.Duration
}
