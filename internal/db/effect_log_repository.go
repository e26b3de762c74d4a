package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/aurafx/internal/effect"
)

// EffectLogEntry is one stored effect application.
type EffectLogEntry struct {
	ID        uuid.UUID
	ContextID uuid.UUID
	TargetID  int64
	Effect    string
	Spec      json.RawMessage
	CreatedAt time.Time
}

// EffectLogRepository keeps an audit trail of applied effect specs.
type EffectLogRepository struct {
	db *pgxpool.Pool
}

// NewEffectLogRepository creates a new EffectLogRepository.
func NewEffectLogRepository(db *pgxpool.Pool) *EffectLogRepository {
	return &EffectLogRepository{db: db}
}

// Append stores spec applied to the character targetID.
func (r *EffectLogRepository) Append(ctx context.Context, targetID int64, spec *effect.Spec) (uuid.UUID, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encoding effect %s: %w", spec.Name(), err)
	}

	id := uuid.New()
	query := `
		INSERT INTO effect_log (id, context_id, target_id, effect, spec)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.Exec(ctx, query, id, spec.Context().ID(), targetID, spec.Name(), raw); err != nil {
		return uuid.Nil, fmt.Errorf("inserting effect log for character %d: %w", targetID, err)
	}

	return id, nil
}

// ListByTarget returns the latest entries for a character, newest first.
func (r *EffectLogRepository) ListByTarget(ctx context.Context, targetID int64, limit int) ([]EffectLogEntry, error) {
	query := `
		SELECT id, context_id, target_id, effect, spec, created_at
		FROM effect_log
		WHERE target_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying effect log for character %d: %w", targetID, err)
	}
	defer rows.Close()

	entries := make([]EffectLogEntry, 0, limit)
	for rows.Next() {
		var e EffectLogEntry
		if err := rows.Scan(&e.ID, &e.ContextID, &e.TargetID, &e.Effect, &e.Spec, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning effect log row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating effect log rows: %w", err)
	}

	return entries, nil
}
