package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abdulachik/panelforge/internal/describe"
	"github.com/abdulachik/panelforge/internal/extractor"
	"github.com/abdulachik/panelforge/internal/record"
	"github.com/spf13/cobra"
)

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Manage stored locations",
}

var locationAddCmd = &cobra.Command{
	Use:   "add NAME [description...]",
	Short: "Store a location extracted from a description or image",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLocationAdd,
}

var locationUpdateCmd = &cobra.Command{
	Use:   "update NAME [description...]",
	Short: "Re-extract a stored location from a new description",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLocationUpdate,
}

var locationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored locations",
	RunE:  runLocationList,
}

var locationShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show a stored location",
	Args:  cobra.ExactArgs(1),
	RunE:  runLocationShow,
}

var locationImage string

func init() {
	for _, c := range []*cobra.Command{locationAddCmd, locationUpdateCmd} {
		c.Flags().StringVar(&locationImage, "image", "", "Describe this image instead of reading a description")
	}

	locationCmd.AddCommand(locationAddCmd, locationUpdateCmd, locationListCmd, locationShowCmd)
	rootCmd.AddCommand(locationCmd)
}

func runLocationAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("location name is required")
	}

	description, err := readDescription(ctx, args[1:], locationImage, describe.TargetLocation)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	l, err := a.Store.CreateLocation(ctx, record.Location{
		Name:        name,
		Description: description,
		Attributes:  extractor.ExtractLocation(description),
	})
	if err != nil {
		return fmt.Errorf("create location: %w", err)
	}

	slog.Info("location stored", "name", l.Name, "id", l.ID, "real", l.Attributes.IsRealPlace)
	return printJSON(l)
}

func runLocationUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	description, err := readDescription(ctx, args[1:], locationImage, describe.TargetLocation)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	l, err := a.Store.GetLocationByName(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get location %q: %w", args[0], err)
	}

	l.Description = description
	l.Attributes = extractor.ExtractLocation(description)
	if err := a.Store.UpdateLocation(ctx, l.Location); err != nil {
		return fmt.Errorf("update location: %w", err)
	}

	slog.Info("location updated", "name", l.Name)
	return printJSON(l.Location)
}

func runLocationList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	locations, err := a.Store.ListLocations(ctx)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}

	if len(locations) == 0 {
		fmt.Println("No locations stored.")
		return nil
	}
	for _, l := range locations {
		kind := "fictional"
		if l.Attributes.IsRealPlace {
			kind = "real"
		}
		fmt.Printf("%-24s %-10s %s\n", l.Name, kind, l.ID)
	}
	return nil
}

func runLocationShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	l, err := a.Store.GetLocationByName(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get location %q: %w", args[0], err)
	}
	return printJSON(l)
}
