package db

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/aurafx/internal/effect"
	"github.com/udisondev/aurafx/internal/gametag"
	"github.com/udisondev/aurafx/internal/model"
)

func TestEffectLogRepository_AppendAndList(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewEffectLogRepository(pool)
	ctx := context.Background()

	caster := model.Handle{Index: 1, Gen: 1}
	ectx := effect.NewContext(caster, caster)
	require.NoError(t, ectx.SetCallerMagnitude(gametag.DamageFire, 12))
	spec := effect.DamageTemplate("Firebolt", gametag.DamageFire).MakeSpec(ectx, 2)

	id, err := repo.Append(ctx, 5, spec)
	require.NoError(t, err)

	entries, err := repo.ListByTarget(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, ectx.ID(), e.ContextID)
	assert.Equal(t, int64(5), e.TargetID)
	assert.Equal(t, "Firebolt", e.Effect)

	var wire struct {
		Name    string `json:"name"`
		Level   int32  `json:"level"`
		Context struct {
			CallerMagnitudes map[string]float64 `json:"callerMagnitudes"`
		} `json:"context"`
	}
	require.NoError(t, json.Unmarshal(e.Spec, &wire))
	assert.Equal(t, "Firebolt", wire.Name)
	assert.Equal(t, int32(2), wire.Level)
	assert.Equal(t, 12.0, wire.Context.CallerMagnitudes["Damage.Fire"])

	empty, err := repo.ListByTarget(ctx, 6, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
