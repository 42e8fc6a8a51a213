package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/abdulachik/panelforge/internal/db"
	"github.com/abdulachik/panelforge/internal/imagegen"
	"github.com/abdulachik/panelforge/internal/session"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate PROJECT",
	Short: "Generate panel images from composed prompts",
	Long: `Generate one image per panel of a project and save it as WebP under
OUTPUT_DIR/PROJECT. Panels without a stored prompt are composed first.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var (
	generateReference   string
	generateStrength    float64
	generateConcurrency int
	generateAspect      string
)

func init() {
	generateCmd.Flags().StringVar(&generateReference, "reference", "", "Reference image to condition every panel on")
	generateCmd.Flags().Float64Var(&generateStrength, "strength", 0, "Reference strength (default IMAGE_STRENGTH)")
	generateCmd.Flags().IntVar(&generateConcurrency, "concurrency", 0, "Parallel requests (default IMAGE_CONCURRENCY)")
	generateCmd.Flags().StringVar(&generateAspect, "aspect", "", "Aspect ratio, e.g. 16:9")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Config.ValidateForImages(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	project, stored, panels, err := loadProject(ctx, a, args[0])
	if err != nil {
		return err
	}
	if len(panels) == 0 {
		return fmt.Errorf("project %q has no panels; import a script first", project.Name)
	}

	composed, err := storedPrompts(stored)
	if err != nil {
		slog.Info("composing panels before generation", "project", project.Name, "reason", err)

		refiner, err := a.Refiner(a.Config.RefineEnabled)
		if err != nil {
			return fmt.Errorf("create refiner: %w", err)
		}
		s, err := a.Session(project.Grammar, refiner)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		if composed, err = s.ComposePanels(ctx, panels); err != nil {
			return err
		}
		if err := savePrompts(ctx, a.Store, stored, composed); err != nil {
			return err
		}
	}

	opts := session.GenerateOptions{
		Concurrency: a.Config.ImageConcurrency,
		Strength:    a.Config.ImageStrength,
		AspectRatio: generateAspect,
	}
	if generateConcurrency > 0 {
		opts.Concurrency = generateConcurrency
	}
	if cmd.Flags().Changed("strength") {
		opts.Strength = generateStrength
	}
	if generateReference != "" {
		if opts.Reference, err = os.ReadFile(generateReference); err != nil {
			return fmt.Errorf("read reference: %w", err)
		}
	}

	gen, err := a.Generator(ctx)
	if err != nil {
		return fmt.Errorf("create generator: %w", err)
	}

	start := time.Now()
	images, err := session.GenerateImages(ctx, gen, composed, opts)
	if err != nil {
		return err
	}

	ids := make(map[int]string, len(stored))
	for _, p := range stored {
		ids[p.Number] = p.ID
	}

	dir := filepath.Join(a.Config.OutputDir, project.Name)
	for _, img := range images {
		path, err := imagegen.SaveWebP(img.Result, dir, fmt.Sprintf("panel-%03d", img.Number))
		if err != nil {
			return fmt.Errorf("save panel %d: %w", img.Number, err)
		}
		if err := a.Store.UpdatePanelImage(ctx, ids[img.Number], path); err != nil {
			return fmt.Errorf("store image path for panel %d: %w", img.Number, err)
		}
		fmt.Printf("Panel %d: %s\n", img.Number, path)
	}

	slog.Info("generation complete", "project", project.Name, "images", len(images),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// storedPrompts returns the stored prompts of every panel, or an error
// naming the first panel that has none.
func storedPrompts(stored []db.Panel) ([]session.ComposedPanel, error) {
	out := make([]session.ComposedPanel, 0, len(stored))
	for _, p := range stored {
		if p.Prompt == nil || *p.Prompt == "" {
			return nil, fmt.Errorf("panel %d has no prompt", p.Number)
		}
		cp := session.ComposedPanel{Number: p.Number, Action: p.Action}
		cp.Prompt = *p.Prompt
		if p.Source != nil {
			cp.Source = session.Source(*p.Source)
		}
		out = append(out, cp)
	}
	return out, nil
}
