package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MAX_UPLOAD_MB", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.OpenAIModel)
	assert.Equal(t, int64(50), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, "6060", cfg.Ops.Port)
	assert.Empty(t, cfg.AI.OpenAIKey)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("TEMPERATURE", "0.7")
	t.Setenv("PPROF_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.AI.OpenAIModel)
	assert.Equal(t, int64(5), cfg.Upload.MaxFileSizeMB)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-9)
	assert.False(t, cfg.Ops.PprofEnabled)
}

func TestLoadRejectsInvalidLimits(t *testing.T) {
	t.Setenv("MAX_UPLOAD_MB", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvIntOrDefaultIgnoresGarbage(t *testing.T) {
	t.Setenv("MAX_TOKENS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.AI.MaxTokens)
}
