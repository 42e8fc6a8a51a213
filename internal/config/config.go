// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Storage
	DatabasePath string
	VecLitePath  string
	OutputDir    string

	// Vision description: "claude" or "gemini"
	DescribeProvider string
	AnthropicAPIKey  string
	AnthropicModel   string

	// Gemini serves both description and image generation.
	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string

	// Refinement
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	RefineEnabled bool

	// Composition
	DefaultGrammar string
	HistoryBudget  int
	HistoryDepth   int

	// Image generation
	ImageConcurrency int
	ImageStrength    float64

	// Collaborator pacing
	RateInterval     time.Duration
	DescribeCacheTTL time.Duration

	// Server
	HTTPAddr string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It loads a .env file first when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:     getEnv("DATABASE_PATH", "data/panelforge.db"),
		VecLitePath:      getEnv("VECLITE_PATH", "data/library.veclite"),
		OutputDir:        getEnv("OUTPUT_DIR", "output"),
		DescribeProvider: getEnv("DESCRIBE_PROVIDER", "claude"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", ""),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		DefaultGrammar:   getEnv("DEFAULT_GRAMMAR", prompt.BriefSketchName),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RefineEnabled, err = strconv.ParseBool(getEnv("REFINE_ENABLED", "false")); err != nil {
		return nil, fmt.Errorf("invalid REFINE_ENABLED: %w", err)
	}

	if cfg.HistoryBudget, err = strconv.Atoi(getEnv("HISTORY_BUDGET", "2000")); err != nil {
		return nil, fmt.Errorf("invalid HISTORY_BUDGET: %w", err)
	}
	if cfg.HistoryDepth, err = strconv.Atoi(getEnv("HISTORY_DEPTH", "1")); err != nil {
		return nil, fmt.Errorf("invalid HISTORY_DEPTH: %w", err)
	}
	if cfg.ImageConcurrency, err = strconv.Atoi(getEnv("IMAGE_CONCURRENCY", "3")); err != nil {
		return nil, fmt.Errorf("invalid IMAGE_CONCURRENCY: %w", err)
	}

	if cfg.ImageStrength, err = strconv.ParseFloat(getEnv("IMAGE_STRENGTH", "0.4"), 64); err != nil {
		return nil, fmt.Errorf("invalid IMAGE_STRENGTH: %w", err)
	}

	if cfg.RateInterval, err = time.ParseDuration(getEnv("RATE_INTERVAL", "2s")); err != nil {
		return nil, fmt.Errorf("invalid RATE_INTERVAL: %w", err)
	}
	if cfg.DescribeCacheTTL, err = time.ParseDuration(getEnv("DESCRIBE_CACHE_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid DESCRIBE_CACHE_TTL: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if _, err := prompt.Lookup(c.DefaultGrammar); err != nil {
		return fmt.Errorf("invalid DEFAULT_GRAMMAR: %w", err)
	}
	if c.HistoryDepth < 1 {
		return fmt.Errorf("HISTORY_DEPTH must be at least 1")
	}
	return nil
}

// ValidateForDescribe checks configuration needed for vision description.
func (c *Config) ValidateForDescribe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch c.DescribeProvider {
	case "claude", "":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when DESCRIBE_PROVIDER is claude")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when DESCRIBE_PROVIDER is gemini")
		}
	default:
		return fmt.Errorf("invalid DESCRIBE_PROVIDER: %s (must be 'claude' or 'gemini')", c.DescribeProvider)
	}
	return nil
}

// ValidateForRefine checks configuration needed for prompt refinement.
func (c *Config) ValidateForRefine() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for refinement")
	}
	return nil
}

// ValidateForImages checks configuration needed for image generation.
func (c *Config) ValidateForImages() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for image generation")
	}
	if c.ImageConcurrency < 1 {
		return fmt.Errorf("IMAGE_CONCURRENCY must be at least 1")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required for image generation")
	}
	return nil
}

// ValidateForLibrary checks configuration needed for the VecLite library.
func (c *Config) ValidateForLibrary() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.VecLitePath == "" {
		return fmt.Errorf("VECLITE_PATH is required")
	}
	return nil
}

// ValidateForServe checks configuration needed for the HTTP API.
func (c *Config) ValidateForServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.RefineEnabled {
		return c.ValidateForRefine()
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
