package main

import (
	"context"
	"fmt"

	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff PROJECT",
	Short: "Show word-level changes to a project's prompts",
	Long: `Recompose every panel of a project and show a word diff against the
stored prompt, for example after a character was updated.

With --refine the panels are refined instead and the diff shows what the
refiner changed in each composed draft.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

var (
	diffGrammar string
	diffRefine  bool
)

func init() {
	diffCmd.Flags().StringVar(&diffGrammar, "grammar", "", "Recompose with this grammar instead of the project's")
	diffCmd.Flags().BoolVar(&diffRefine, "refine", false, "Diff each composed draft against its refined prompt")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
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

	grammar := project.Grammar
	if diffGrammar != "" {
		grammar = diffGrammar
	}

	refiner, err := a.Refiner(diffRefine)
	if err != nil {
		return fmt.Errorf("create refiner: %w", err)
	}
	s, err := a.Session(grammar, refiner)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	composed, err := s.ComposePanels(ctx, panels)
	if err != nil {
		return err
	}

	before := make(map[int]string, len(stored))
	for _, p := range stored {
		if p.Prompt != nil {
			before[p.Number] = *p.Prompt
		}
	}

	for _, p := range composed {
		old := before[p.Number]
		if diffRefine {
			old = p.Draft
		}

		fmt.Printf("=== Panel %d ===\n", p.Number)
		switch {
		case diffRefine && old == "":
			fmt.Printf("not refined: %s\n", p.Reason)
		case old == p.Prompt:
			fmt.Println("unchanged")
		default:
			fmt.Println(prompt.FormatDiff(prompt.DiffWords(old, p.Prompt)))
		}
		fmt.Println()
	}
	return nil
}
