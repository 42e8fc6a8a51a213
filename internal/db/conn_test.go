package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdulachik/panelforge/internal/prompt"
	"github.com/abdulachik/panelforge/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("creates directory and database", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "test.db")

		ctx := context.Background()
		store, err := NewStore(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		_, err = os.Stat(dbPath)
		assert.NoError(t, err)

		var result int
		err = store.QueryRowContext(ctx, "SELECT 1").Scan(&result)
		assert.NoError(t, err)
		assert.Equal(t, 1, result)
	})

	t.Run("sets pragmas", func(t *testing.T) {
		ctx := context.Background()
		store, err := NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		defer store.Close()

		var mode string
		require.NoError(t, store.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode)

		var fk int
		require.NoError(t, store.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
		assert.Equal(t, 1, fk)
	})
}

func TestStore_Migrate(t *testing.T) {
	t.Run("creates tables", func(t *testing.T) {
		store := NewTestStore(t)
		ctx := context.Background()

		for _, table := range []string{"characters", "locations", "projects", "panels"} {
			var name string
			err := store.QueryRowContext(ctx,
				"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			assert.NoError(t, err)
			assert.Equal(t, table, name)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := NewTestStore(t)
		ctx := context.Background()

		require.NoError(t, store.Migrate(ctx))

		counts, err := store.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, Counts{}, counts)
	})
}

func TestExtractUpMigration(t *testing.T) {
	t.Run("extracts up portion", func(t *testing.T) {
		content := `-- +migrate Up
CREATE TABLE test (id INTEGER);

-- +migrate Down
DROP TABLE test;
`
		assert.Equal(t, "CREATE TABLE test (id INTEGER);", extractUpMigration(content))
	})

	t.Run("handles no down marker", func(t *testing.T) {
		content := "CREATE TABLE test (id INTEGER);"
		assert.Equal(t, content, extractUpMigration(content))
	})
}

func str(s string) *string { return &s }

func TestCharacters(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	created, err := store.CreateCharacter(ctx, record.Subject{
		Name:        "Mara",
		BasedOn:     str("a lighthouse keeper"),
		Description: "CHARACTER_TYPE: human | tall, red hair",
		Attributes: record.AttributeRecord{
			Kind:                record.KindHuman,
			Hair:                str("red hair"),
			DistinctiveFeatures: []string{"scar on chin"},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	t.Run("get by name is case-insensitive", func(t *testing.T) {
		got, err := store.GetCharacterByName(ctx, "mara")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "red hair", record.Value(got.Attributes.Hair))
		assert.Equal(t, []string{"scar on chin"}, got.Attributes.DistinctiveFeatures)
		assert.Equal(t, "a lighthouse keeper", record.Value(got.BasedOn))
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := store.CreateCharacter(ctx, record.Subject{Name: "MARA"})
		assert.Error(t, err)
	})

	t.Run("update", func(t *testing.T) {
		s := created.Subject
		s.Attributes = record.Merge(s.Attributes, record.AttributeRecord{Build: str("wiry build")})
		require.NoError(t, store.UpdateCharacter(ctx, s))

		got, err := store.GetCharacter(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "wiry build", record.Value(got.Attributes.Build))
		assert.Equal(t, "red hair", record.Value(got.Attributes.Hair))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.GetCharacterByName(ctx, "Nobody")
		assert.True(t, errors.Is(err, ErrNotFound))

		err = store.UpdateCharacter(ctx, record.Subject{ID: "missing", Name: "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list and delete", func(t *testing.T) {
		_, err := store.CreateCharacter(ctx, record.Subject{Name: "Theo"})
		require.NoError(t, err)

		list, err := store.ListCharacters(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Mara", list[0].Name)
		assert.Nil(t, list[1].BasedOn)

		require.NoError(t, store.DeleteCharacter(ctx, list[1].ID))
		n, err := store.CountCharacters(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestLocations(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	created, err := store.CreateLocation(ctx, record.Location{
		Name: "Eiffel Tower",
		Attributes: record.LocationRecord{
			IsRealPlace: true,
			RealPlace:   record.RealPlaceInfo{City: str("Paris"), Country: str("France")},
			TimeOfDay:   record.TimeDusk,
		},
	})
	require.NoError(t, err)

	got, err := store.GetLocationByName(ctx, "eiffel tower")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.Attributes.IsRealPlace)
	assert.Equal(t, "Paris", record.Value(got.Attributes.RealPlace.City))
	assert.Equal(t, record.TimeDusk, got.Attributes.TimeOfDay)

	got.Description = "iron lattice tower"
	require.NoError(t, store.UpdateLocation(ctx, got.Location))

	list, err := store.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "iron lattice tower", list[0].Description)

	_, err = store.GetLocation(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectsAndPanels(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	project, err := store.CreateProject(ctx, "Lighthouse", prompt.BriefSketchName)
	require.NoError(t, err)

	char, err := store.CreateCharacter(ctx, record.Subject{Name: "Mara"})
	require.NoError(t, err)
	loc, err := store.CreateLocation(ctx, record.Location{Name: "Lamp room"})
	require.NoError(t, err)

	err = store.InTx(ctx, func(q *Queries) error {
		for i, action := range []string{"Mara climbs.", "Mara finds the lamp."} {
			_, err := q.UpsertPanel(ctx, UpsertPanelParams{
				ProjectID:    project.ID,
				Number:       i + 1,
				Action:       action,
				LocationID:   &loc.ID,
				CharacterIDs: []string{char.ID},
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	panels, err := store.ListPanels(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, panels, 2)
	assert.Equal(t, 1, panels[0].Number)
	assert.Equal(t, []string{char.ID}, panels[0].CharacterIDs)
	assert.Equal(t, loc.ID, *panels[0].LocationID)
	assert.Nil(t, panels[0].Camera)
	assert.Nil(t, panels[0].Prompt)

	require.NoError(t, store.UpdatePanelPrompt(ctx, UpdatePanelPromptParams{
		ID: panels[0].ID, Prompt: "SHOT: wide", Source: "primary",
	}))
	require.NoError(t, store.UpdatePanelImage(ctx, panels[0].ID, "output/panel-01.webp"))

	panels, err = store.ListPanels(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "SHOT: wide", *panels[0].Prompt)
	assert.Equal(t, "primary", *panels[0].Source)
	assert.Nil(t, panels[0].Reason)
	assert.Equal(t, "output/panel-01.webp", *panels[0].ImagePath)

	t.Run("upsert replaces script and clears prompt", func(t *testing.T) {
		p, err := store.UpsertPanel(ctx, UpsertPanelParams{
			ProjectID: project.ID,
			Number:    1,
			Action:    "Mara hesitates.",
			Camera:    &prompt.Camera{Shot: "close-up"},
		})
		require.NoError(t, err)
		assert.Equal(t, panels[0].ID, p.ID)
		assert.Equal(t, "Mara hesitates.", p.Action)
		assert.Equal(t, "close-up", p.Camera.Shot)
		assert.Nil(t, p.Prompt)
		assert.Nil(t, p.CharacterIDs)
	})

	t.Run("transaction rolls back", func(t *testing.T) {
		err := store.InTx(ctx, func(q *Queries) error {
			if _, err := q.UpsertPanel(ctx, UpsertPanelParams{ProjectID: project.ID, Number: 9, Action: "x"}); err != nil {
				return err
			}
			return errors.New("abort")
		})
		assert.EqualError(t, err, "abort")

		panels, err := store.ListPanels(ctx, project.ID)
		require.NoError(t, err)
		assert.Len(t, panels, 2)
	})

	t.Run("deleting a location keeps the panel", func(t *testing.T) {
		_, err := store.ExecContext(ctx, "DELETE FROM locations WHERE id = ?", loc.ID)
		require.NoError(t, err)

		panels, err := store.ListPanels(ctx, project.ID)
		require.NoError(t, err)
		assert.Nil(t, panels[1].LocationID)
	})

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Projects)
	assert.Equal(t, int64(2), counts.Panels)

	got, err := store.GetProjectByName(ctx, "lighthouse")
	require.NoError(t, err)
	assert.Equal(t, prompt.BriefSketchName, got.Grammar)
}

// NewTestStore provides a migrated test database for use in other packages.
func NewTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() {
		store.Close()
	})

	return store
}
