package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/abdulachik/panelforge/internal/app"
	"github.com/abdulachik/panelforge/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "panelforge",
	Short: "Compose consistent image prompts for comic and storyboard panels",
	Long: `PanelForge turns character and location descriptions into structured
records and composes budgeted, grammar-conformant image prompts for every
panel of a script, carrying continuity from one panel to the next.`,
	SilenceUsage: true,
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openApp loads and validates configuration and opens the migrated store.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}
	return a, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
