package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/aurafx/internal/attribute"
)

// AttributeRepository stores persistent attribute values of characters.
// Meta attributes are never stored.
type AttributeRepository struct {
	db *pgxpool.Pool
}

// NewAttributeRepository creates a new AttributeRepository.
func NewAttributeRepository(db *pgxpool.Pool) *AttributeRepository {
	return &AttributeRepository{db: db}
}

// LoadByCharacterID loads all stored attributes of a character.
// Rows with unknown attribute names are skipped.
func (r *AttributeRepository) LoadByCharacterID(ctx context.Context, charID int64) (map[attribute.ID]float64, error) {
	query := `
		SELECT attribute, value
		FROM character_attributes
		WHERE character_id = $1
	`

	rows, err := r.db.Query(ctx, query, charID)
	if err != nil {
		return nil, fmt.Errorf("querying attributes for character %d: %w", charID, err)
	}
	defer rows.Close()

	values := make(map[attribute.ID]float64, 8)
	for rows.Next() {
		var (
			name  string
			value float64
		)
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scanning attribute row: %w", err)
		}
		id, err := attribute.Parse(name)
		if err != nil {
			slog.Warn("skipping stored attribute", "characterID", charID, "attribute", name, "error", err)
			continue
		}
		values[id] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attribute rows: %w", err)
	}

	return values, nil
}

// Save replaces all stored attributes of a character in one transaction.
func (r *AttributeRepository) Save(ctx context.Context, charID int64, values map[attribute.ID]float64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM character_attributes WHERE character_id = $1`, charID); err != nil {
		return fmt.Errorf("deleting attributes for character %d: %w", charID, err)
	}

	rows := make([][]any, 0, len(values))
	for id, v := range values {
		if id.IsMeta() {
			continue
		}
		rows = append(rows, []any{charID, id.String(), v})
	}
	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"character_attributes"},
			[]string{"character_id", "attribute", "value"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("inserting attributes for character %d: %w", charID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing attributes save: %w", err)
	}

	return nil
}

// SaveValues upserts the given attributes of a character.
func (r *AttributeRepository) SaveValues(ctx context.Context, charID int64, values map[attribute.ID]float64) error {
	batch := &pgx.Batch{}
	for id, v := range values {
		if id.IsMeta() {
			continue
		}
		batch.Queue(
			`INSERT INTO character_attributes (character_id, attribute, value, updated_at)
			 VALUES ($1, $2, $3, now())
			 ON CONFLICT (character_id, attribute) DO UPDATE SET value = $3, updated_at = now()`,
			charID, id.String(), v,
		)
	}
	if batch.Len() == 0 {
		return nil
	}

	br := r.db.SendBatch(ctx, batch)
	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return fmt.Errorf("upserting attributes for character %d: %w", charID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("closing attribute batch: %w", err)
	}

	return nil
}
