package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abdulachik/panelforge/internal/record"
)

// Character is a stored character with its timestamps.
type Character struct {
	record.Subject
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const characterColumns = `id, name, based_on, description, attributes, created_at, updated_at`

func scanCharacter(row scanner) (Character, error) {
	var (
		c                Character
		basedOn          sql.NullString
		attrs            string
		created, updated string
	)
	if err := row.Scan(&c.ID, &c.Name, &basedOn, &c.Description, &attrs, &created, &updated); err != nil {
		return Character{}, err
	}
	c.BasedOn = stringPtr(basedOn)
	if err := json.Unmarshal([]byte(attrs), &c.Attributes); err != nil {
		return Character{}, fmt.Errorf("decode attributes of %s: %w", c.Name, err)
	}
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return c, nil
}

// CreateCharacter stores a new character and returns it with its ID.
func (q *Queries) CreateCharacter(ctx context.Context, s record.Subject) (Character, error) {
	attrs, err := encodeJSON(s.Attributes)
	if err != nil {
		return Character{}, fmt.Errorf("encode attributes: %w", err)
	}
	s.ID = newID()

	row := q.db.QueryRowContext(ctx, `
		INSERT INTO characters (id, name, based_on, description, attributes)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+characterColumns,
		s.ID, s.Name, nullString(s.BasedOn), s.Description, attrs)
	return scanCharacter(row)
}

// GetCharacter looks a character up by ID.
func (q *Queries) GetCharacter(ctx context.Context, id string) (Character, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	c, err := scanCharacter(row)
	if err != nil {
		return Character{}, notFound(err, "character "+id)
	}
	return c, nil
}

// GetCharacterByName looks a character up by case-insensitive name.
func (q *Queries) GetCharacterByName(ctx context.Context, name string) (Character, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE name = ?`, name)
	c, err := scanCharacter(row)
	if err != nil {
		return Character{}, notFound(err, "character "+name)
	}
	return c, nil
}

// UpdateCharacter overwrites a character's stored fields.
func (q *Queries) UpdateCharacter(ctx context.Context, s record.Subject) error {
	attrs, err := encodeJSON(s.Attributes)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE characters
		SET name = ?, based_on = ?, description = ?, attributes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		s.Name, nullString(s.BasedOn), s.Description, attrs, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("character %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

// ListCharacters returns every character ordered by name.
func (q *Queries) ListCharacters(ctx context.Context) ([]Character, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+characterColumns+` FROM characters ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCharacter removes a character.
func (q *Queries) DeleteCharacter(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	return err
}

// CountCharacters returns the number of stored characters.
func (q *Queries) CountCharacters(ctx context.Context) (int64, error) {
	return count(ctx, q.db, "characters")
}
