package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/panelforge/internal/db"
	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/abdulachik/panelforge/internal/refine"
	"github.com/abdulachik/panelforge/internal/session"
	"github.com/spf13/cobra"
)

var composeCmd = &cobra.Command{
	Use:   "compose PROJECT",
	Short: "Compose prompts for every panel of a project",
	Long: `Compose an image prompt for each panel of a project, in panel order.

Each panel sees the actions of the panels before it as continuity. Prompts
are stored on the panels unless --dry-run is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompose,
}

var (
	composeGrammar string
	composeRefine  bool
	composeTokens  bool
	composeDryRun  bool
)

func init() {
	composeCmd.Flags().StringVar(&composeGrammar, "grammar", "", "Override the project's prompt grammar")
	composeCmd.Flags().BoolVar(&composeRefine, "refine", false, "Refine prompts with the language model (default REFINE_ENABLED)")
	composeCmd.Flags().BoolVar(&composeTokens, "tokens", false, "Show the token count of each prompt")
	composeCmd.Flags().BoolVar(&composeDryRun, "dry-run", false, "Print prompts without storing them")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	project, stored, panels, err := loadProject(ctx, a, args[0])
	if err != nil {
		return err
	}
	if len(panels) == 0 {
		return fmt.Errorf("project %q has no panels; import a script first", project.Name)
	}

	grammar := project.Grammar
	if composeGrammar != "" {
		grammar = composeGrammar
	}

	enabled := a.Config.RefineEnabled
	if cmd.Flags().Changed("refine") {
		enabled = composeRefine
	}
	refiner, err := a.Refiner(enabled)
	if err != nil {
		return fmt.Errorf("create refiner: %w", err)
	}

	s, err := a.Session(grammar, refiner)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	slog.Info("composing panels", "project", project.Name, "grammar", grammar, "panels", len(panels), "refine", enabled)
	composed, err := s.ComposePanels(ctx, panels)
	if err != nil {
		return err
	}

	g, err := prompt.Lookup(grammar)
	if err != nil {
		return err
	}
	printComposed(composed, g)

	if composeDryRun {
		return nil
	}
	return savePrompts(ctx, a.Store, stored, composed)
}

func printComposed(composed []session.ComposedPanel, g prompt.Grammar) {
	for _, p := range composed {
		fmt.Printf("=== Panel %d (%s, %d/%d %s) ===\n", p.Number, p.Source,
			prompt.Measure(p.Prompt, g.Unit), g.MaxLength, g.Unit)
		if p.Reason != "" {
			fmt.Printf("note: %s\n", p.Reason)
		}
		if composeTokens {
			fmt.Printf("tokens: %d\n", refine.CountTokens(p.Prompt))
		}
		fmt.Println(p.Prompt)
		fmt.Println()
	}
}

func savePrompts(ctx context.Context, store *db.Store, stored []db.Panel, composed []session.ComposedPanel) error {
	ids := make(map[int]string, len(stored))
	for _, p := range stored {
		ids[p.Number] = p.ID
	}

	return store.InTx(ctx, func(q *db.Queries) error {
		for _, p := range composed {
			err := q.UpdatePanelPrompt(ctx, db.UpdatePanelPromptParams{
				ID:     ids[p.Number],
				Prompt: p.Prompt,
				Source: string(p.Source),
				Reason: p.Reason,
			})
			if err != nil {
				return fmt.Errorf("store prompt for panel %d: %w", p.Number, err)
			}
		}
		return nil
	})
}
