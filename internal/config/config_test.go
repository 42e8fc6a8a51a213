package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env and restore after test
	origEnv := os.Environ()
	t.Cleanup(func() {
		os.Clearenv()
		for _, e := range origEnv {
			for i := 0; i < len(e); i++ {
				if e[i] == '=' {
					os.Setenv(e[:i], e[i+1:])
					break
				}
			}
		}
	})

	t.Run("defaults", func(t *testing.T) {
		os.Clearenv()
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "data/panelforge.db", cfg.DatabasePath)
		assert.Equal(t, "data/library.veclite", cfg.VecLitePath)
		assert.Equal(t, "claude", cfg.DescribeProvider)
		assert.Equal(t, "brief-sketch", cfg.DefaultGrammar)
		assert.Equal(t, 2000, cfg.HistoryBudget)
		assert.Equal(t, 1, cfg.HistoryDepth)
		assert.Equal(t, 3, cfg.ImageConcurrency)
		assert.InDelta(t, 0.4, cfg.ImageStrength, 1e-9)
		assert.Equal(t, 2*time.Second, cfg.RateInterval)
		assert.Equal(t, 24*time.Hour, cfg.DescribeCacheTTL)
		assert.False(t, cfg.RefineEnabled)
		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("custom values", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("DATABASE_PATH", "/custom/path.db")
		os.Setenv("DESCRIBE_PROVIDER", "gemini")
		os.Setenv("GEMINI_API_KEY", "g-test")
		os.Setenv("REFINE_ENABLED", "true")
		os.Setenv("HISTORY_DEPTH", "2")
		os.Setenv("IMAGE_STRENGTH", "0.55")
		os.Setenv("RATE_INTERVAL", "500ms")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "/custom/path.db", cfg.DatabasePath)
		assert.Equal(t, "gemini", cfg.DescribeProvider)
		assert.Equal(t, "g-test", cfg.GeminiAPIKey)
		assert.True(t, cfg.RefineEnabled)
		assert.Equal(t, 2, cfg.HistoryDepth)
		assert.InDelta(t, 0.55, cfg.ImageStrength, 1e-9)
		assert.Equal(t, 500*time.Millisecond, cfg.RateInterval)
	})

	invalid := []struct {
		key   string
		value string
	}{
		{"REFINE_ENABLED", "maybe"},
		{"HISTORY_BUDGET", "lots"},
		{"HISTORY_DEPTH", "one"},
		{"IMAGE_CONCURRENCY", "x"},
		{"IMAGE_STRENGTH", "strong"},
		{"RATE_INTERVAL", "soon"},
		{"DESCRIBE_CACHE_TTL", "forever"},
	}

	for _, tt := range invalid {
		t.Run("invalid "+tt.key, func(t *testing.T) {
			os.Clearenv()
			os.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func valid() *Config {
	return &Config{
		DatabasePath:   "test.db",
		DefaultGrammar: "brief-sketch",
		HistoryDepth:   1,
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"missing database path", func(c *Config) { c.DatabasePath = "" }, "DATABASE_PATH"},
		{"unknown grammar", func(c *Config) { c.DefaultGrammar = "watercolor" }, "DEFAULT_GRAMMAR"},
		{"zero depth", func(c *Config) { c.HistoryDepth = 0 }, "HISTORY_DEPTH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_ValidateForDescribe(t *testing.T) {
	t.Run("claude", func(t *testing.T) {
		cfg := valid()
		cfg.DescribeProvider = "claude"
		assert.ErrorContains(t, cfg.ValidateForDescribe(), "ANTHROPIC_API_KEY")

		cfg.AnthropicAPIKey = "sk-test"
		assert.NoError(t, cfg.ValidateForDescribe())
	})

	t.Run("gemini", func(t *testing.T) {
		cfg := valid()
		cfg.DescribeProvider = "gemini"
		assert.ErrorContains(t, cfg.ValidateForDescribe(), "GEMINI_API_KEY")

		cfg.GeminiAPIKey = "g-test"
		assert.NoError(t, cfg.ValidateForDescribe())
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := valid()
		cfg.DescribeProvider = "ollama"
		assert.ErrorContains(t, cfg.ValidateForDescribe(), "DESCRIBE_PROVIDER")
	})
}

func TestConfig_ValidateForRefine(t *testing.T) {
	cfg := valid()
	assert.ErrorContains(t, cfg.ValidateForRefine(), "OPENAI_API_KEY")

	cfg.OpenAIAPIKey = "sk-test"
	assert.NoError(t, cfg.ValidateForRefine())
}

func TestConfig_ValidateForImages(t *testing.T) {
	cfg := valid()
	cfg.OutputDir = "output"
	cfg.ImageConcurrency = 2
	assert.ErrorContains(t, cfg.ValidateForImages(), "GEMINI_API_KEY")

	cfg.GeminiAPIKey = "g-test"
	assert.NoError(t, cfg.ValidateForImages())

	cfg.ImageConcurrency = 0
	assert.ErrorContains(t, cfg.ValidateForImages(), "IMAGE_CONCURRENCY")
}

func TestConfig_ValidateForServe(t *testing.T) {
	cfg := valid()
	cfg.HTTPAddr = ":9000"
	assert.NoError(t, cfg.ValidateForServe())

	cfg.RefineEnabled = true
	assert.ErrorContains(t, cfg.ValidateForServe(), "OPENAI_API_KEY")
}
