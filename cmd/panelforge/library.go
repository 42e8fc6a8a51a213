package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/abdulachik/panelforge/internal/library"
	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Search stored characters and locations by similarity",
}

var libraryIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index every stored character and location",
	RunE:  runLibraryIndex,
}

var librarySearchCmd = &cobra.Command{
	Use:   "search QUERY...",
	Short: "Find characters and locations similar to a description",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLibrarySearch,
}

var (
	libraryRebuild   bool
	libraryKind      string
	libraryLimit     int
	libraryThreshold float32
	libraryHybrid    bool
)

func init() {
	libraryIndexCmd.Flags().BoolVar(&libraryRebuild, "rebuild", false, "Delete the existing index first")

	librarySearchCmd.Flags().StringVar(&libraryKind, "kind", "", "Only search characters or locations")
	librarySearchCmd.Flags().IntVarP(&libraryLimit, "limit", "k", 5, "Maximum results")
	librarySearchCmd.Flags().Float32Var(&libraryThreshold, "threshold", 0.3, "Minimum similarity")
	librarySearchCmd.Flags().BoolVar(&libraryHybrid, "hybrid", false, "Combine vector and keyword search")

	libraryCmd.AddCommand(libraryIndexCmd, librarySearchCmd)
	rootCmd.AddCommand(libraryCmd)
}

func runLibraryIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Config.ValidateForLibrary(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if libraryRebuild {
		if err := os.Remove(a.Config.VecLitePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove index: %w", err)
		}
	}

	idx, err := a.Library()
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer idx.Close()

	if n := idx.Count(); n > 0 {
		slog.Info("library already indexed, use --rebuild to re-index", "entries", n)
		return nil
	}

	characters, err := a.Store.ListCharacters(ctx)
	if err != nil {
		return fmt.Errorf("list characters: %w", err)
	}
	for _, c := range characters {
		if _, err := idx.AddCharacter(ctx, c); err != nil {
			return err
		}
	}

	locations, err := a.Store.ListLocations(ctx)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}
	for _, l := range locations {
		if _, err := idx.AddLocation(ctx, l); err != nil {
			return err
		}
	}

	if err := idx.Sync(); err != nil {
		return fmt.Errorf("sync library: %w", err)
	}

	slog.Info("library indexed", "characters", len(characters), "locations", len(locations))
	return nil
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.Join(args, " ")

	var kind library.Kind
	switch libraryKind {
	case "":
	case string(library.KindCharacter), string(library.KindLocation):
		kind = library.Kind(libraryKind)
	default:
		return fmt.Errorf("invalid --kind %q (must be character or location)", libraryKind)
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	idx, err := a.Library()
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer idx.Close()

	var hits []library.Hit
	if libraryHybrid {
		hits, err = idx.Hybrid(ctx, query, libraryLimit)
	} else {
		hits, err = idx.Search(ctx, query, kind, libraryLimit, libraryThreshold)
	}
	if err != nil {
		return err
	}

	if len(hits) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, h := range hits {
		fmt.Printf("%.3f  %-10s %-24s %s\n", h.Similarity, h.Kind, h.Name, truncate(h.Text, 80))
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
