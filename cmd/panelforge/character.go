package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abdulachik/panelforge/internal/db"
	"github.com/abdulachik/panelforge/internal/describe"
	"github.com/abdulachik/panelforge/internal/extractor"
	"github.com/abdulachik/panelforge/internal/record"
	"github.com/spf13/cobra"
)

var characterCmd = &cobra.Command{
	Use:   "character",
	Short: "Manage stored characters",
}

var characterAddCmd = &cobra.Command{
	Use:   "add NAME [description...]",
	Short: "Store a character extracted from a description or image",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCharacterAdd,
}

var characterUpdateCmd = &cobra.Command{
	Use:   "update NAME [description...]",
	Short: "Merge newly extracted attributes into a stored character",
	Long: `Extract attributes from a new description and merge them into the
stored character. Only fields the new description fills are replaced.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCharacterUpdate,
}

var characterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored characters",
	RunE:  runCharacterList,
}

var characterShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show a stored character",
	Args:  cobra.ExactArgs(1),
	RunE:  runCharacterShow,
}

var characterDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a stored character",
	Args:  cobra.ExactArgs(1),
	RunE:  runCharacterDelete,
}

var (
	characterImage   string
	characterBasedOn string
)

func init() {
	for _, c := range []*cobra.Command{characterAddCmd, characterUpdateCmd} {
		c.Flags().StringVar(&characterImage, "image", "", "Describe this image instead of reading a description")
	}
	characterAddCmd.Flags().StringVar(&characterBasedOn, "based-on", "", "Who or what the character is based on")

	characterCmd.AddCommand(characterAddCmd, characterUpdateCmd, characterListCmd, characterShowCmd, characterDeleteCmd)
	rootCmd.AddCommand(characterCmd)
}

func runCharacterAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("character name is required")
	}

	description, err := readDescription(ctx, args[1:], characterImage, describe.TargetCharacter)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	subject := record.Subject{
		Name:        name,
		Description: description,
		Attributes:  extractor.Extract(description),
	}
	if characterBasedOn != "" {
		subject.BasedOn = record.Text(characterBasedOn)
	}

	c, err := a.Store.CreateCharacter(ctx, subject)
	if err != nil {
		return fmt.Errorf("create character: %w", err)
	}

	slog.Info("character stored", "name", c.Name, "id", c.ID, "kind", c.Attributes.Kind,
		"fields", len(c.Attributes.PopulatedFields()))
	return printJSON(c)
}

func runCharacterUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	description, err := readDescription(ctx, args[1:], characterImage, describe.TargetCharacter)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.Store.GetCharacterByName(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get character %q: %w", args[0], err)
	}

	edit := extractor.Extract(description)
	c.Attributes = record.Merge(c.Attributes, edit)
	if description != "" {
		c.Description = description
	}

	if err := a.Store.UpdateCharacter(ctx, c.Subject); err != nil {
		return fmt.Errorf("update character: %w", err)
	}

	slog.Info("character updated", "name", c.Name, "changed", edit.PopulatedFields())
	return printJSON(c.Subject)
}

func runCharacterList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	characters, err := a.Store.ListCharacters(ctx)
	if err != nil {
		return fmt.Errorf("list characters: %w", err)
	}

	if len(characters) == 0 {
		fmt.Println("No characters stored.")
		return nil
	}
	for _, c := range characters {
		fmt.Printf("%-24s %-10s %2d fields  %s\n", c.Name, c.Attributes.Kind,
			len(c.Attributes.PopulatedFields()), c.ID)
	}
	return nil
}

func runCharacterShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.Store.GetCharacterByName(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get character %q: %w", args[0], err)
	}
	return printJSON(c)
}

func runCharacterDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.Store.GetCharacterByName(ctx, args[0])
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("character %q not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("get character: %w", err)
	}

	if err := a.Store.DeleteCharacter(ctx, c.ID); err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	slog.Info("character deleted", "name", c.Name)
	return nil
}
