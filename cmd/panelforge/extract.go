package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/abdulachik/panelforge/internal/describe"
	"github.com/abdulachik/panelforge/internal/extractor"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [description...]",
	Short: "Extract structured attributes from a description",
	Long: `Extract a structured attribute record from a free-text description.

The description comes from the arguments, from stdin when no arguments are
given, or from a vision model when --image is set.`,
	RunE: runExtract,
}

var (
	extractImage  string
	extractTarget string
)

func init() {
	extractCmd.Flags().StringVar(&extractImage, "image", "", "Describe this image before extracting")
	extractCmd.Flags().StringVar(&extractTarget, "target", "character", "What the description shows (character or location)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	target := describe.ParseTarget(extractTarget)

	description, err := readDescription(ctx, args, extractImage, target)
	if err != nil {
		return err
	}

	if target == describe.TargetLocation {
		attrs := extractor.ExtractLocation(description)
		return printJSON(map[string]any{
			"description": description,
			"attributes":  attrs,
		})
	}

	attrs := extractor.Extract(description)
	return printJSON(map[string]any{
		"description": description,
		"attributes":  attrs,
		"populated":   attrs.PopulatedFields(),
	})
}

// readDescription returns the description to extract from: a vision model
// description when image is set, otherwise the joined args or stdin.
func readDescription(ctx context.Context, args []string, image string, target describe.Target) (string, error) {
	if image != "" {
		return describeImage(ctx, image, target)
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func describeImage(ctx context.Context, path string, target describe.Target) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	a, err := openApp(ctx)
	if err != nil {
		return "", err
	}
	defer a.Close()

	d, err := a.Describer(ctx)
	if err != nil {
		return "", fmt.Errorf("create describer: %w", err)
	}

	slog.Info("describing image", "path", path, "target", target, "provider", a.Config.DescribeProvider)
	text, err := d.Describe(ctx, describe.Image{Data: data}, target)
	if err != nil {
		if describe.Classify(err) == describe.FailureBlocked {
			return "", fmt.Errorf("describe image: %w (enter the attributes by hand instead)", err)
		}
		return "", fmt.Errorf("describe image: %w", err)
	}
	return text, nil
}
