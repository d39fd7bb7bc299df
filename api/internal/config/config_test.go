package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.Equal(t, 4*time.Second, cfg.FactInterval)
	assert.Equal(t, int64(10<<20), cfg.MaxImageBytes)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FACT_INTERVAL", "2s")
	t.Setenv("DISPATCH_WORKERS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, 2*time.Second, cfg.FactInterval)
	assert.Equal(t, 3, cfg.DispatchWorkers)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "deepseek")
	_, err := Load()
	assert.Error(t, err)
}
