package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/aurafx/internal/attribute"
)

func TestAttributeRepository_SaveAndLoad(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewAttributeRepository(pool)
	ctx := context.Background()

	values := map[attribute.ID]float64{
		attribute.Health:         42,
		attribute.MaxHealth:      180,
		attribute.Vigor:          20,
		attribute.IncomingDamage: 99,
	}
	require.NoError(t, repo.Save(ctx, 1, values))

	got, err := repo.LoadByCharacterID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[attribute.ID]float64{
		attribute.Health:    42,
		attribute.MaxHealth: 180,
		attribute.Vigor:     20,
	}, got, "meta attributes are not stored")

	require.NoError(t, repo.Save(ctx, 1, map[attribute.ID]float64{attribute.Mana: 5}))
	got, err = repo.LoadByCharacterID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[attribute.ID]float64{attribute.Mana: 5}, got, "Save replaces everything")
}

func TestAttributeRepository_SaveValuesUpserts(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewAttributeRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, 7, map[attribute.ID]float64{attribute.Health: 100, attribute.Mana: 50}))
	require.NoError(t, repo.SaveValues(ctx, 7, map[attribute.ID]float64{attribute.Health: 60, attribute.Vigor: 12}))

	got, err := repo.LoadByCharacterID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, map[attribute.ID]float64{
		attribute.Health: 60,
		attribute.Mana:   50,
		attribute.Vigor:  12,
	}, got)

	other, err := repo.LoadByCharacterID(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAttributeRepository_SkipsUnknownNames(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewAttributeRepository(pool)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `INSERT INTO character_attributes (character_id, attribute, value) VALUES (3, 'Luck', 7), (3, 'Vigor', 9)`)
	require.NoError(t, err)

	got, err := repo.LoadByCharacterID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, map[attribute.ID]float64{attribute.Vigor: 9}, got)
}
