package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abdulachik/panelforge/internal/record"
)

// StoredLocation is a stored location with its timestamps.
type StoredLocation struct {
	record.Location
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const locationColumns = `id, name, description, attributes, created_at, updated_at`

func scanLocation(row scanner) (StoredLocation, error) {
	var (
		l                StoredLocation
		attrs            string
		created, updated string
	)
	if err := row.Scan(&l.ID, &l.Name, &l.Description, &attrs, &created, &updated); err != nil {
		return StoredLocation{}, err
	}
	if err := json.Unmarshal([]byte(attrs), &l.Attributes); err != nil {
		return StoredLocation{}, fmt.Errorf("decode attributes of %s: %w", l.Name, err)
	}
	l.CreatedAt = parseTime(created)
	l.UpdatedAt = parseTime(updated)
	return l, nil
}

// CreateLocation stores a new location and returns it with its ID.
func (q *Queries) CreateLocation(ctx context.Context, l record.Location) (StoredLocation, error) {
	attrs, err := encodeJSON(l.Attributes)
	if err != nil {
		return StoredLocation{}, fmt.Errorf("encode attributes: %w", err)
	}
	l.ID = newID()

	row := q.db.QueryRowContext(ctx, `
		INSERT INTO locations (id, name, description, attributes)
		VALUES (?, ?, ?, ?)
		RETURNING `+locationColumns,
		l.ID, l.Name, l.Description, attrs)
	return scanLocation(row)
}

// GetLocation looks a location up by ID.
func (q *Queries) GetLocation(ctx context.Context, id string) (StoredLocation, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, id)
	l, err := scanLocation(row)
	if err != nil {
		return StoredLocation{}, notFound(err, "location "+id)
	}
	return l, nil
}

// GetLocationByName looks a location up by case-insensitive name.
func (q *Queries) GetLocationByName(ctx context.Context, name string) (StoredLocation, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE name = ?`, name)
	l, err := scanLocation(row)
	if err != nil {
		return StoredLocation{}, notFound(err, "location "+name)
	}
	return l, nil
}

// UpdateLocation overwrites a location's stored fields.
func (q *Queries) UpdateLocation(ctx context.Context, l record.Location) error {
	attrs, err := encodeJSON(l.Attributes)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE locations
		SET name = ?, description = ?, attributes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		l.Name, l.Description, attrs, l.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("location %s: %w", l.ID, ErrNotFound)
	}
	return nil
}

// ListLocations returns every location ordered by name.
func (q *Queries) ListLocations(ctx context.Context) ([]StoredLocation, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredLocation
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CountLocations returns the number of stored locations.
func (q *Queries) CountLocations(ctx context.Context) (int64, error) {
	return count(ctx, q.db, "locations")
}
