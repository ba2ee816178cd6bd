package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, float64(50), cfg.Server.RateLimitRPS)
	assert.Equal(t, 100, cfg.Server.RateLimitBurst)
	assert.Equal(t, "http://127.0.0.1:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "llama3.1", cfg.Ollama.Model)
	assert.Equal(t, 120*time.Second, cfg.Ollama.ChatTimeout)
	assert.Equal(t, 200000, cfg.Ollama.MaxDatasetChars)
	assert.Equal(t, "development", cfg.App.Environment)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("OLLAMA_MODEL", "qwen2.5")
	t.Setenv("OLLAMA_TIMEOUT_MS", "5000")
	t.Setenv("FINE_TUNE_MAX_DATASET_CHARS", "1234")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "qwen2.5", cfg.Ollama.Model)
	assert.Equal(t, 5*time.Second, cfg.Ollama.ChatTimeout)
	assert.Equal(t, 1234, cfg.Ollama.MaxDatasetChars)
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)
}

func TestLoadFallsBackOnBadNumbers(t *testing.T) {
	t.Setenv("OLLAMA_TIMEOUT_MS", "soon")
	t.Setenv("RATE_LIMIT_RPS", "lots")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 120*time.Second, cfg.Ollama.ChatTimeout)
	assert.Equal(t, float64(50), cfg.Server.RateLimitRPS)
}

func TestValidateRejectsBadTimeout(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: "4000"},
		Ollama: OllamaConfig{BaseURL: "http://127.0.0.1:11434", ChatTimeout: 0},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OLLAMA_TIMEOUT_MS")
}
