package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abdulachik/panelforge/internal/prompt"
)

// Project groups the ordered panels of one story.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Grammar   string    `json:"grammar"`
	CreatedAt time.Time `json:"created_at"`
}

// Panel is one stored panel of a project.
type Panel struct {
	ID           string         `json:"id"`
	ProjectID    string         `json:"project_id"`
	Number       int            `json:"number"`
	Action       string         `json:"action"`
	Camera       *prompt.Camera `json:"camera,omitempty"`
	LocationID   *string        `json:"location_id,omitempty"`
	CharacterIDs []string       `json:"character_ids,omitempty"`
	Prompt       *string        `json:"prompt,omitempty"`
	Source       *string        `json:"source,omitempty"`
	Reason       *string        `json:"reason,omitempty"`
	ImagePath    *string        `json:"image_path,omitempty"`
}

// CreateProject stores a new project.
func (q *Queries) CreateProject(ctx context.Context, name, grammar string) (Project, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO projects (id, name, grammar) VALUES (?, ?, ?)
		RETURNING id, name, grammar, created_at`,
		newID(), name, grammar)
	return scanProject(row)
}

// GetProjectByName looks a project up by case-insensitive name.
func (q *Queries) GetProjectByName(ctx context.Context, name string) (Project, error) {
	row := q.db.QueryRowContext(ctx, `SELECT id, name, grammar, created_at FROM projects WHERE name = ?`, name)
	p, err := scanProject(row)
	if err != nil {
		return Project{}, notFound(err, "project "+name)
	}
	return p, nil
}

// ListProjects returns every project, newest first.
func (q *Queries) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, grammar, created_at FROM projects ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountProjects returns the number of stored projects.
func (q *Queries) CountProjects(ctx context.Context) (int64, error) {
	return count(ctx, q.db, "projects")
}

func scanProject(row scanner) (Project, error) {
	var p Project
	var created string
	if err := row.Scan(&p.ID, &p.Name, &p.Grammar, &created); err != nil {
		return Project{}, err
	}
	p.CreatedAt = parseTime(created)
	return p, nil
}

// UpsertPanelParams holds the scripted content of a panel.
type UpsertPanelParams struct {
	ProjectID    string
	Number       int
	Action       string
	Camera       *prompt.Camera
	LocationID   *string
	CharacterIDs []string
}

// UpsertPanel creates a panel or replaces the scripted content of the panel
// with the same number. A replaced panel loses its composed prompt.
func (q *Queries) UpsertPanel(ctx context.Context, arg UpsertPanelParams) (Panel, error) {
	var camera sql.NullString
	if arg.Camera != nil && !arg.Camera.IsZero() {
		data, err := encodeJSON(arg.Camera)
		if err != nil {
			return Panel{}, fmt.Errorf("encode camera: %w", err)
		}
		camera = sql.NullString{String: data, Valid: true}
	}
	ids := arg.CharacterIDs
	if ids == nil {
		ids = []string{}
	}
	characters, err := encodeJSON(ids)
	if err != nil {
		return Panel{}, fmt.Errorf("encode character ids: %w", err)
	}

	row := q.db.QueryRowContext(ctx, `
		INSERT INTO panels (id, project_id, number, action, camera, location_id, character_ids)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, number) DO UPDATE SET
			action = excluded.action,
			camera = excluded.camera,
			location_id = excluded.location_id,
			character_ids = excluded.character_ids,
			prompt = NULL,
			source = NULL,
			reason = NULL,
			updated_at = CURRENT_TIMESTAMP
		RETURNING `+panelColumns,
		newID(), arg.ProjectID, arg.Number, arg.Action, camera, nullString(arg.LocationID), characters)
	return scanPanel(row)
}

// UpdatePanelPromptParams records the composed prompt of a panel.
type UpdatePanelPromptParams struct {
	ID     string
	Prompt string
	Source string
	Reason string
}

// UpdatePanelPrompt stores a panel's composed prompt.
func (q *Queries) UpdatePanelPrompt(ctx context.Context, arg UpdatePanelPromptParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE panels SET prompt = ?, source = ?, reason = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		arg.Prompt, arg.Source, nullString(&arg.Reason), arg.ID)
	return err
}

// UpdatePanelImage stores the path of a panel's generated image.
func (q *Queries) UpdatePanelImage(ctx context.Context, id, path string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE panels SET image_path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		path, id)
	return err
}

// ListPanels returns a project's panels in panel order.
func (q *Queries) ListPanels(ctx context.Context, projectID string) ([]Panel, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+panelColumns+` FROM panels WHERE project_id = ? ORDER BY number`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Panel
	for rows.Next() {
		p, err := scanPanel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountPanels returns the number of stored panels.
func (q *Queries) CountPanels(ctx context.Context) (int64, error) {
	return count(ctx, q.db, "panels")
}

const panelColumns = `id, project_id, number, action, camera, location_id, character_ids, prompt, source, reason, image_path`

func scanPanel(row scanner) (Panel, error) {
	var (
		p                                   Panel
		camera, location, text, src, reason sql.NullString
		image                               sql.NullString
		characters                          string
	)
	if err := row.Scan(&p.ID, &p.ProjectID, &p.Number, &p.Action, &camera, &location,
		&characters, &text, &src, &reason, &image); err != nil {
		return Panel{}, err
	}

	if camera.Valid {
		p.Camera = &prompt.Camera{}
		if err := json.Unmarshal([]byte(camera.String), p.Camera); err != nil {
			return Panel{}, fmt.Errorf("decode camera of panel %d: %w", p.Number, err)
		}
	}
	if err := json.Unmarshal([]byte(characters), &p.CharacterIDs); err != nil {
		return Panel{}, fmt.Errorf("decode characters of panel %d: %w", p.Number, err)
	}
	if len(p.CharacterIDs) == 0 {
		p.CharacterIDs = nil
	}
	p.LocationID = stringPtr(location)
	p.Prompt = stringPtr(text)
	p.Source = stringPtr(src)
	p.Reason = stringPtr(reason)
	p.ImagePath = stringPtr(image)
	return p, nil
}
