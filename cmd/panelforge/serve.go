package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdulachik/panelforge/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the PanelForge HTTP API for attribute extraction and prompt
composition. Stored characters and locations can be referenced by name.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

const storeCheckInterval = 30 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Config.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	refiner, err := a.Refiner(a.Config.RefineEnabled)
	if err != nil {
		return fmt.Errorf("create refiner: %w", err)
	}

	srv := server.New(server.Config{
		Store:          a.Store,
		Refiner:        refiner,
		DefaultGrammar: a.Config.DefaultGrammar,
		HistoryBudget:  a.Config.HistoryBudget,
	})

	slog.Info("starting PanelForge API",
		"addr", a.Config.HTTPAddr,
		"default_grammar", a.Config.DefaultGrammar,
		"refine", refiner != nil,
	)

	go func() {
		ticker := time.NewTicker(storeCheckInterval)
		defer ticker.Stop()
		for {
			srv.CheckStore(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(a.Config.HTTPAddr)
	}()

	// Wait for shutdown signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
