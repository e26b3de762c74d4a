package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/udisondev/aurafx/internal/ability"
	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/db"
	"github.com/udisondev/aurafx/internal/gametag"
	"github.com/udisondev/aurafx/internal/model"
	"github.com/udisondev/aurafx/internal/sim"
	"github.com/udisondev/aurafx/internal/spell"
	"github.com/udisondev/aurafx/internal/world"
)

const duelInterval = time.Second

// logPresenter prints floating combat text to the log.
type logPresenter struct{}

func (logPresenter) ShowDamageNumber(amount float64, target model.Handle, blocked, critical bool) {
	slog.Info("damage number",
		"amount", amount,
		"target", target,
		"blocked", blocked,
		"critical", critical)
}

// attributeLoader reads a character's stored attributes.
type attributeLoader interface {
	LoadByCharacterID(ctx context.Context, charID int64) (map[attribute.ID]float64, error)
}

// duel keeps a caster firing every configured spell at a training dummy.
// The dummy respawns after death.
type duel struct {
	registry  *world.Registry
	processor *sim.Processor
	spells    []*spell.ProjectileSpell
	loader    attributeLoader
	journal   *db.AttributeJournal

	caster *model.Character
	dummy  *model.Character
}

func newDuel(
	ctx context.Context,
	registry *world.Registry,
	processor *sim.Processor,
	catalog spell.Catalog,
	loader attributeLoader,
	journal *db.AttributeJournal,
) (*duel, error) {
	d := &duel{
		registry:  registry,
		processor: processor,
		loader:    loader,
		journal:   journal,
	}
	for _, s := range catalog {
		d.spells = append(d.spells, s)
	}
	sort.Slice(d.spells, func(i, j int) bool { return d.spells[i].Name() < d.spells[j].Name() })

	d.caster = model.NewCharacter(1, "Aura", model.Vec3{}, 5,
		model.WithAuthority(),
		model.WithSocketOffset(model.NewVec3(0, 0, 60)),
		model.WithPresenter(logPresenter{}))
	if err := d.spawn(ctx, d.caster, 20, 30, true); err != nil {
		return nil, err
	}

	if err := d.spawnDummy(ctx, true); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *duel) spawnDummy(ctx context.Context, restore bool) error {
	d.dummy = model.NewCharacter(2, "Training Dummy", model.NewVec3(600, 0, 0), 1)
	d.dummy.Abilities().Grant(ability.NewFunc("Stagger", gametag.NewSet(gametag.EffectsHitReact), func(level int32) error {
		slog.Debug("dummy staggers", "level", level)
		return nil
	}), 1)
	return d.spawn(ctx, d.dummy, 40, 0, restore)
}

// spawn initialises c, registers it and derives its vital maximums.
// With restore, stored attributes are loaded first; a stored Health of 0 is
// dropped so the character comes back at full health. Every value not taken
// from storage is journaled, so a flush overwrites what an earlier life left.
func (d *duel) spawn(ctx context.Context, c *model.Character, vigor, intelligence float64, restore bool) error {
	if err := c.InitVitals(vigor, intelligence, 0, 0); err != nil {
		return fmt.Errorf("init %s: %w", c.Name(), err)
	}

	stored := map[attribute.ID]float64{}
	if restore && d.loader != nil {
		var err error
		stored, err = d.loader.LoadByCharacterID(ctx, c.CharacterID())
		if err != nil {
			return fmt.Errorf("load %s: %w", c.Name(), err)
		}
		if h, ok := stored[attribute.Health]; ok && h <= 0 {
			delete(stored, attribute.Health)
		}
		for id, v := range stored {
			if err := c.Attributes().Init(id, v); err != nil {
				return fmt.Errorf("load %s: %w", c.Name(), err)
			}
		}
	}

	d.registry.Register(c)
	if err := d.processor.Recompute(ctx, c); err != nil {
		return err
	}

	err := d.processor.Exec(ctx, func() error {
		for vital, maxID := range map[attribute.ID]attribute.ID{attribute.Health: attribute.MaxHealth, attribute.Mana: attribute.MaxMana} {
			if _, ok := stored[vital]; ok {
				continue
			}
			v, err := c.Attributes().Get(maxID)
			if err != nil {
				return err
			}
			if err := c.Attributes().Init(vital, v); err != nil {
				return err
			}
		}

		if d.journal == nil {
			return nil
		}
		c.Attributes().Subscribe(d.journal)
		for id, v := range c.Attributes().Snapshot() {
			if _, ok := stored[id]; !ok {
				d.journal.AttributeChanged(c.CharacterID(), attribute.Change{Attribute: id, New: v})
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("spawn %s: %w", c.Name(), err)
	}

	health, _ := c.Attributes().Get(attribute.Health)
	maxHealth, _ := c.Attributes().Get(attribute.MaxHealth)
	slog.Info("character spawned",
		"name", c.Name(),
		"handle", c.Handle(),
		"restored", len(stored),
		"health", health,
		"max_health", maxHealth)
	return nil
}

// Run casts every tick until ctx is canceled.
func (d *duel) Run(ctx context.Context) error {
	ticker := time.NewTicker(duelInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if err := d.round(ctx); err != nil {
				return err
			}
		}
	}
}

func (d *duel) round(ctx context.Context) error {
	if d.dummy.IsDead() {
		if err := d.registry.Remove(d.dummy.Handle()); err != nil {
			slog.Warn("remove dead dummy", "error", err)
		}
		// A fresh dummy: stored values may predate the unflushed death.
		if err := d.spawnDummy(ctx, false); err != nil {
			return err
		}
	}

	for _, s := range d.spells {
		p, err := s.SpawnProjectile(d.caster, d.dummy.Location())
		if err != nil {
			return fmt.Errorf("cast %s: %w", s.Name(), err)
		}
		if p == nil {
			continue
		}
		if err := p.Impact(d.dummy.Handle()); err != nil {
			return fmt.Errorf("impact %s: %w", s.Name(), err)
		}
	}
	return nil
}
