package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("RECOMMEND_TOP_K", "")
	t.Setenv("BARDUINO_DB", "")

	cfg := Load()
	if cfg.LLMProvider != "openai" {
		t.Errorf("expected default provider openai, got %q", cfg.LLMProvider)
	}
	if cfg.OpenAIBaseURL != "https://api.openai.com" {
		t.Errorf("unexpected default base URL: %q", cfg.OpenAIBaseURL)
	}
	if cfg.OpenAIAPIKey != "" {
		t.Errorf("API key must have no default, got %q", cfg.OpenAIAPIKey)
	}
	if cfg.OpenAIEmbedModel != "text-embedding-3-large" {
		t.Errorf("unexpected default embed model: %q", cfg.OpenAIEmbedModel)
	}
	if cfg.OpenAIChatModel != "gpt-4o-mini" {
		t.Errorf("unexpected default chat model: %q", cfg.OpenAIChatModel)
	}
	if cfg.TopK != DefaultTopK {
		t.Errorf("expected default topK %d, got %d", DefaultTopK, cfg.TopK)
	}
	if cfg.DBPath != "barduino.db" {
		t.Errorf("unexpected default DB path: %q", cfg.DBPath)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RECOMMEND_TOP_K", "5")

	cfg := Load()
	if cfg.LLMProvider != "ollama" {
		t.Errorf("expected ollama, got %q", cfg.LLMProvider)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("expected sk-test, got %q", cfg.OpenAIAPIKey)
	}
	if cfg.TopK != 5 {
		t.Errorf("expected topK 5, got %d", cfg.TopK)
	}
}

func TestEnvOrInt_Invalid(t *testing.T) {
	t.Setenv("RECOMMEND_TOP_K", "zero")
	if cfg := Load(); cfg.TopK != DefaultTopK {
		t.Errorf("invalid topK should fall back to %d, got %d", DefaultTopK, cfg.TopK)
	}

	t.Setenv("RECOMMEND_TOP_K", "-2")
	if cfg := Load(); cfg.TopK != DefaultTopK {
		t.Errorf("negative topK should fall back to %d, got %d", DefaultTopK, cfg.TopK)
	}
}
