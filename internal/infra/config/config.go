// Package config provides application-wide configuration loaded from env vars.
// All fields except the OpenAI API key have safe defaults so the binary runs
// locally without any env setup. The API key is deliberately default-free:
// credentials are never embedded in source.
package config

import (
	"os"
	"strconv"
)

// Config holds runtime configuration for the barduino server.
type Config struct {
	// LLM
	LLMProvider      string // LLM_PROVIDER — "openai" (default) or "ollama"
	OpenAIBaseURL    string // OPENAI_BASE_URL — default: "https://api.openai.com"
	OpenAIAPIKey     string // OPENAI_API_KEY — no default, required for the openai provider
	OpenAIEmbedModel string // OPENAI_EMBED_MODEL — default: "text-embedding-3-large"
	OpenAIChatModel  string // OPENAI_CHAT_MODEL — default: "gpt-4o-mini"
	OllamaBaseURL    string // OLLAMA_BASE_URL — default: "http://localhost:11434"
	OllamaEmbedModel string // OLLAMA_EMBED_MODEL — default: "nomic-embed-text"
	OllamaChatModel  string // OLLAMA_CHAT_MODEL — default: "llama3.2:3b"

	// Recommendation
	TopK int // RECOMMEND_TOP_K — candidates offered to the LLM, default: 3

	// Storage
	DBPath string // BARDUINO_DB — default: "barduino.db"
}

const (
	envKeyLLMProvider      = "LLM_PROVIDER"
	envKeyOpenAIBaseURL    = "OPENAI_BASE_URL"
	envKeyOpenAIAPIKey     = "OPENAI_API_KEY"
	envKeyOpenAIEmbedModel = "OPENAI_EMBED_MODEL"
	envKeyOpenAIChatModel  = "OPENAI_CHAT_MODEL"
	envKeyOllamaBaseURL    = "OLLAMA_BASE_URL"
	envKeyOllamaEmbedModel = "OLLAMA_EMBED_MODEL"
	envKeyOllamaChatModel  = "OLLAMA_CHAT_MODEL"
	envKeyTopK             = "RECOMMEND_TOP_K"
	envKeyDBPath           = "BARDUINO_DB"
)

// DefaultTopK is the number of ranked candidates passed to the LLM step.
const DefaultTopK = 3

// Load reads configuration from environment variables, applying defaults for missing values.
func Load() Config {
	return Config{
		LLMProvider:      envOr(envKeyLLMProvider, "openai"),
		OpenAIBaseURL:    envOr(envKeyOpenAIBaseURL, "https://api.openai.com"),
		OpenAIAPIKey:     os.Getenv(envKeyOpenAIAPIKey),
		OpenAIEmbedModel: envOr(envKeyOpenAIEmbedModel, "text-embedding-3-large"),
		OpenAIChatModel:  envOr(envKeyOpenAIChatModel, "gpt-4o-mini"),
		OllamaBaseURL:    envOr(envKeyOllamaBaseURL, "http://localhost:11434"),
		OllamaEmbedModel: envOr(envKeyOllamaEmbedModel, "nomic-embed-text"),
		OllamaChatModel:  envOr(envKeyOllamaChatModel, "llama3.2:3b"),
		TopK:             envOrInt(envKeyTopK, DefaultTopK),
		DBPath:           envOr(envKeyDBPath, "barduino.db"),
	}
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envOrInt returns the integer value of key, or fallback if unset or not a
// positive integer.
func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
