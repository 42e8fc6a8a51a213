package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/abdulachik/panelforge/internal/record"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library and project statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	counts, err := a.Store.Counts(ctx)
	if err != nil {
		return err
	}

	characters, err := a.Store.ListCharacters(ctx)
	if err != nil {
		return fmt.Errorf("list characters: %w", err)
	}
	byKind := make(map[record.SubjectKind]int)
	for _, c := range characters {
		byKind[c.Attributes.Kind]++
	}

	projects, err := a.Store.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	var composed, imaged int
	for _, p := range projects {
		panels, err := a.Store.ListPanels(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("list panels: %w", err)
		}
		for _, panel := range panels {
			if panel.Prompt != nil {
				composed++
			}
			if panel.ImagePath != nil {
				imaged++
			}
		}
	}

	fmt.Println("=== PanelForge Statistics ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", a.Config.DatabasePath)
	fmt.Println()
	fmt.Println("Characters:")
	fmt.Printf("  Total: %d\n", counts.Characters)
	if len(byKind) > 0 {
		kinds := make([]string, 0, len(byKind))
		for k := range byKind {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("    %s: %d\n", k, byKind[record.SubjectKind(k)])
		}
	}
	fmt.Println()
	fmt.Printf("Locations: %d\n", counts.Locations)
	fmt.Println()
	fmt.Println("Projects:")
	fmt.Printf("  Total: %d\n", counts.Projects)
	fmt.Printf("  Panels: %d\n", counts.Panels)
	fmt.Printf("  Composed: %d\n", composed)
	fmt.Printf("  With images: %d\n", imaged)
	fmt.Println()

	fmt.Println("Grammars:")
	for _, g := range prompt.Grammars() {
		marker := ""
		if g.Name == a.Config.DefaultGrammar {
			marker = " (default)"
		}
		fmt.Printf("  %s: %s, %d %s max%s\n", g.Name, g.Layout, g.MaxLength, g.Unit, marker)
	}
	fmt.Println()

	// VecLite stats only when an index exists
	if _, err := os.Stat(a.Config.VecLitePath); err == nil {
		idx, err := a.Library()
		if err != nil {
			slog.Warn("failed to open library", "error", err)
		} else {
			defer idx.Close()
			stats := idx.Stats()
			fmt.Println("VecLite:")
			fmt.Printf("  Path: %s\n", a.Config.VecLitePath)
			fmt.Printf("  Entries: %d\n", stats.Count)
			fmt.Printf("  Dimension: %d\n", stats.Dimension)
			fmt.Printf("  Distance: %s\n", stats.DistanceType)
			fmt.Printf("  Index: %s\n", stats.IndexType)
			fmt.Println()
		}
	}

	return nil
}
