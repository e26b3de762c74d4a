package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/combat"
	"github.com/udisondev/aurafx/internal/config"
	"github.com/udisondev/aurafx/internal/db"
	"github.com/udisondev/aurafx/internal/effect"
	"github.com/udisondev/aurafx/internal/sim"
	"github.com/udisondev/aurafx/internal/spell"
	"github.com/udisondev/aurafx/internal/world"
)

// memoryStore keeps attributes in memory for the loader and the journal.
type memoryStore struct {
	values map[int64]map[attribute.ID]float64
}

func (m *memoryStore) LoadByCharacterID(_ context.Context, charID int64) (map[attribute.ID]float64, error) {
	out := make(map[attribute.ID]float64, len(m.values[charID]))
	for id, v := range m.values[charID] {
		out[id] = v
	}
	return out, nil
}

func (m *memoryStore) SaveValues(_ context.Context, charID int64, values map[attribute.ID]float64) error {
	if m.values[charID] == nil {
		m.values[charID] = make(map[attribute.ID]float64, len(values))
	}
	for id, v := range values {
		m.values[charID][id] = v
	}
	return nil
}

func newTestDuel(t *testing.T) (*duel, *sim.Processor) {
	t.Helper()
	return newStoredTestDuel(t, nil, nil)
}

func newStoredTestDuel(t *testing.T, loader attributeLoader, journal *db.AttributeJournal) (*duel, *sim.Processor) {
	t.Helper()
	cfg := config.DefaultServer()
	registry := world.NewRegistry()
	executor := effect.NewExecutor(registry, combat.NewDamageResolver(registry, nil))
	processor := sim.NewProcessor(registry, executor, effect.DerivedTemplate(cfg.Combat.MaxHealth, cfg.Combat.MaxMana))
	catalog, err := spell.NewCatalog(cfg.Combat.Spells, spell.NewSpawner(registry, processor))
	require.NoError(t, err)

	d, err := newDuel(context.Background(), registry, processor, catalog, loader, journal)
	require.NoError(t, err)
	return d, processor
}

func TestDuel_SpawnsAtFullVitals(t *testing.T) {
	d, _ := newTestDuel(t)

	// Dummy: vigor 40, level 1.
	maxHealth, err := d.dummy.Attributes().Get(attribute.MaxHealth)
	require.NoError(t, err)
	assert.Equal(t, 80+2.5*40+10.0, maxHealth)

	health, err := d.dummy.Attributes().Get(attribute.Health)
	require.NoError(t, err)
	assert.Equal(t, maxHealth, health)
}

func TestDuel_RoundDamagesDummy(t *testing.T) {
	d, processor := newTestDuel(t)
	require.Len(t, d.spells, 2)

	require.NoError(t, d.round(context.Background()))
	assert.Equal(t, len(d.spells), processor.Drain())

	health, err := d.dummy.Attributes().Get(attribute.Health)
	require.NoError(t, err)
	assert.Less(t, health, 190.0)
}

func TestDuel_RespawnsDeadDummy(t *testing.T) {
	d, _ := newTestDuel(t)
	old := d.dummy
	old.Die()

	require.NoError(t, d.round(context.Background()))

	assert.NotSame(t, old, d.dummy)
	_, ok := d.registry.Resolve(old.Handle())
	assert.False(t, ok)
	assert.False(t, d.dummy.IsDead())
}

func TestDuel_RestoresStoredHealth(t *testing.T) {
	tests := []struct {
		name   string
		stored float64
		want   float64
	}{
		{name: "wounded", stored: 35, want: 35},
		{name: "dead in storage", stored: 0, want: 190},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{values: map[int64]map[attribute.ID]float64{
				2: {attribute.Health: tt.stored},
			}}
			d, _ := newStoredTestDuel(t, store, db.NewAttributeJournal(store))

			health, err := d.dummy.Attributes().Get(attribute.Health)
			require.NoError(t, err)
			assert.Equal(t, tt.want, health)
		})
	}
}

func TestDuel_RespawnIgnoresUnflushedDeath(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{values: map[int64]map[attribute.ID]float64{
		2: {attribute.Health: 35},
	}}
	journal := db.NewAttributeJournal(store)
	d, _ := newStoredTestDuel(t, store, journal)
	require.NoError(t, journal.Flush(ctx))

	// Death is journaled but not flushed: storage still says 35.
	require.NoError(t, d.dummy.Attributes().Set(attribute.Health, 0))
	d.dummy.Die()
	require.Equal(t, 35.0, store.values[2][attribute.Health])

	require.NoError(t, d.round(ctx))

	maxHealth, err := d.dummy.Attributes().Get(attribute.MaxHealth)
	require.NoError(t, err)
	health, err := d.dummy.Attributes().Get(attribute.Health)
	require.NoError(t, err)
	assert.Equal(t, maxHealth, health)

	require.NoError(t, journal.Flush(ctx))
	assert.Equal(t, health, store.values[2][attribute.Health], "storage matches the respawned dummy")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}
