package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/panelforge/internal/app"
	"github.com/abdulachik/panelforge/internal/db"
	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/abdulachik/panelforge/internal/script"
	"github.com/abdulachik/panelforge/internal/session"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects and their panels",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectImportCmd = &cobra.Command{
	Use:     "import NAME SCRIPT",
	Aliases: []string{"import-script"},
	Short:   "Import panels from a script file",
	Long: `Split a script file into panels and store them in the project.

Panels are split on "PANEL n" headings, or on blank lines when the script
has none. Stored characters and locations named in a panel's action are
attached to it. Re-importing replaces panels with the same number.`,
	Args: cobra.ExactArgs(2),
	RunE: runProjectImport,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE:  runProjectList,
}

var projectPanelsCmd = &cobra.Command{
	Use:   "panels NAME",
	Short: "Show the panels of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectPanels,
}

var (
	projectGrammar  string
	projectLocation string
)

func init() {
	projectCreateCmd.Flags().StringVar(&projectGrammar, "grammar", "", "Prompt grammar for the project (default DEFAULT_GRAMMAR)")
	projectImportCmd.Flags().StringVar(&projectLocation, "location", "", "Location for panels that name none")

	projectCmd.AddCommand(projectCreateCmd, projectImportCmd, projectListCmd, projectPanelsCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	grammar := projectGrammar
	if grammar == "" {
		grammar = a.Config.DefaultGrammar
	}
	if _, err := prompt.Lookup(grammar); err != nil {
		return err
	}

	p, err := a.Store.CreateProject(ctx, args[0], grammar)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	slog.Info("project created", "name", p.Name, "grammar", p.Grammar, "id", p.ID)
	return nil
}

func runProjectImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	beats, err := script.SplitFile(args[1])
	if err != nil {
		return fmt.Errorf("split script: %w", err)
	}
	if len(beats) == 0 {
		return fmt.Errorf("no panels found in %s", args[1])
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	project, err := a.Store.GetProjectByName(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get project %q: %w", args[0], err)
	}

	characters, err := a.Store.ListCharacters(ctx)
	if err != nil {
		return fmt.Errorf("list characters: %w", err)
	}
	characterIDs := make(map[string]string, len(characters))
	characterNames := make([]string, 0, len(characters))
	for _, c := range characters {
		characterIDs[c.Name] = c.ID
		characterNames = append(characterNames, c.Name)
	}

	locations, err := a.Store.ListLocations(ctx)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}
	locationIDs := make(map[string]string, len(locations))
	locationNames := make([]string, 0, len(locations))
	for _, l := range locations {
		locationIDs[l.Name] = l.ID
		locationNames = append(locationNames, l.Name)
	}

	var defaultLocation *string
	if projectLocation != "" {
		l, err := a.Store.GetLocationByName(ctx, projectLocation)
		if err != nil {
			return fmt.Errorf("get location %q: %w", projectLocation, err)
		}
		defaultLocation = &l.ID
	}

	err = a.Store.InTx(ctx, func(q *db.Queries) error {
		for _, beat := range beats {
			params := db.UpsertPanelParams{
				ProjectID:  project.ID,
				Number:     beat.Number,
				Action:     beat.Action,
				Camera:     beat.Camera,
				LocationID: defaultLocation,
			}
			for _, name := range script.Mentions(beat.Action, characterNames) {
				params.CharacterIDs = append(params.CharacterIDs, characterIDs[name])
			}
			if named := script.Mentions(beat.Action, locationNames); len(named) > 0 {
				id := locationIDs[named[0]]
				params.LocationID = &id
			}

			if _, err := q.UpsertPanel(ctx, params); err != nil {
				return fmt.Errorf("store panel %d: %w", beat.Number, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("script imported", "project", project.Name, "panels", len(beats))
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	projects, err := a.Store.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	if len(projects) == 0 {
		fmt.Println("No projects.")
		return nil
	}
	for _, p := range projects {
		fmt.Printf("%-24s %-22s %s\n", p.Name, p.Grammar, p.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func runProjectPanels(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	project, err := a.Store.GetProjectByName(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get project %q: %w", args[0], err)
	}
	panels, err := a.Store.ListPanels(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("list panels: %w", err)
	}
	return printJSON(panels)
}

// loadProject returns a project with its stored panels and the scenes
// composed from them, in panel order.
func loadProject(ctx context.Context, a *app.App, name string) (db.Project, []db.Panel, []session.Panel, error) {
	project, err := a.Store.GetProjectByName(ctx, name)
	if err != nil {
		return db.Project{}, nil, nil, fmt.Errorf("get project %q: %w", name, err)
	}

	stored, err := a.Store.ListPanels(ctx, project.ID)
	if err != nil {
		return db.Project{}, nil, nil, fmt.Errorf("list panels: %w", err)
	}

	panels := make([]session.Panel, 0, len(stored))
	for _, p := range stored {
		scene, err := sceneFor(ctx, a.Store, p)
		if err != nil {
			return db.Project{}, nil, nil, fmt.Errorf("panel %d: %w", p.Number, err)
		}
		panels = append(panels, session.Panel{Number: p.Number, Scene: scene})
	}
	return project, stored, panels, nil
}

func sceneFor(ctx context.Context, store *db.Store, p db.Panel) (prompt.Scene, error) {
	scene := prompt.Scene{Action: p.Action, Camera: p.Camera}

	for _, id := range p.CharacterIDs {
		c, err := store.GetCharacter(ctx, id)
		if err != nil {
			return prompt.Scene{}, fmt.Errorf("get character: %w", err)
		}
		scene.Subjects = append(scene.Subjects, c.Subject)
	}

	if p.LocationID != nil {
		l, err := store.GetLocation(ctx, *p.LocationID)
		if err != nil {
			return prompt.Scene{}, fmt.Errorf("get location: %w", err)
		}
		loc := l.Location
		scene.Location = &loc
	}
	return scene, nil
}
