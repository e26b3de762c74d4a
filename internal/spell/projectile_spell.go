package spell

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/aurafx/internal/effect"
	"github.com/udisondev/aurafx/internal/gametag"
	"github.com/udisondev/aurafx/internal/model"
)

// DamageType is one damage component of a spell, scaled by ability level.
type DamageType struct {
	Tag   gametag.ID
	Curve *effect.Curve
}

// ProjectileSpell launches a projectile carrying a damage effect.
type ProjectileSpell struct {
	name     string
	tags     gametag.Set
	level    atomic.Int32
	damage   []DamageType
	template *effect.Template
	spawner  *Spawner
}

// NewProjectileSpell creates a spell dealing the given damage types.
// Every damage type needs a curve.
func NewProjectileSpell(name string, level int32, damage []DamageType, spawner *Spawner) (*ProjectileSpell, error) {
	if len(damage) == 0 {
		return nil, fmt.Errorf("spell %s: %w", name, ErrNoDamage)
	}
	types := make([]gametag.ID, 0, len(damage))
	tags := gametag.NewSet()
	for _, d := range damage {
		if d.Curve == nil {
			return nil, fmt.Errorf("spell %s: %s: %w", name, d.Tag, ErrNoDamage)
		}
		types = append(types, d.Tag)
		tags.Add(d.Tag)
	}
	s := &ProjectileSpell{
		name:     name,
		tags:     tags,
		damage:   append([]DamageType(nil), damage...),
		template: effect.DamageTemplate(name, types...),
		spawner:  spawner,
	}
	s.level.Store(level)
	return s, nil
}

// Name returns the spell name.
func (s *ProjectileSpell) Name() string { return s.name }

// Tags returns the damage type tags of the spell.
func (s *ProjectileSpell) Tags() gametag.Set { return s.tags.Clone() }

// Level returns the current ability level.
func (s *ProjectileSpell) Level() int32 { return s.level.Load() }

// SetLevel changes the ability level used by later casts.
func (s *ProjectileSpell) SetLevel(level int32) { s.level.Store(level) }

// SpawnProjectile launches a projectile from the caster's combat socket
// towards target. Without authority it does nothing and returns nil, nil.
func (s *ProjectileSpell) SpawnProjectile(caster model.Actor, target model.Vec3) (*Projectile, error) {
	if auth, ok := caster.(model.AuthorityHolder); !ok || !auth.HasAuthority() {
		return nil, nil
	}
	combatant, ok := caster.(model.Combatant)
	if !ok {
		return nil, fmt.Errorf("spawn %s: caster %s has no combat socket: %w", s.name, caster.Name(), model.ErrMissingCapability)
	}

	socket := combatant.CombatSocketLocation()
	transform := model.Transform{
		Location: socket,
		Rotation: target.Sub(socket).Rotation(),
	}
	level := s.Level()

	p := s.spawner.Create(s.name, transform, caster.Handle())
	spec, err := s.makeSpec(caster.Handle(), p.Handle(), target, level)
	if err == nil {
		err = p.Configure(spec)
	}
	if err == nil {
		err = s.spawner.Activate(p)
	}
	if err != nil {
		if cerr := s.spawner.Cancel(p); cerr != nil {
			slog.Warn("cancel projectile", "spell", s.name, "error", cerr)
		}
		return nil, fmt.Errorf("spawn %s: %w", s.name, err)
	}

	slog.Debug("projectile spawned",
		"spell", s.name,
		"caster", caster.Name(),
		"level", level,
		"projectile", p.Handle())

	return p, nil
}

func (s *ProjectileSpell) makeSpec(caster, projectile model.Handle, target model.Vec3, level int32) (*effect.Spec, error) {
	ctx := effect.NewContext(caster, caster)
	if err := ctx.SetAbility(s.name, level); err != nil {
		return nil, err
	}
	if err := ctx.AddSourceObject(projectile); err != nil {
		return nil, err
	}
	if err := ctx.AddActors(projectile); err != nil {
		return nil, err
	}
	if err := ctx.AddHitResult(effect.HitResult{Location: target}); err != nil {
		return nil, err
	}
	if err := ctx.AddSourceTags(s.tags); err != nil {
		return nil, err
	}

	spec := s.template.MakeSpec(ctx, level)
	for _, d := range s.damage {
		if err := ctx.SetCallerMagnitude(d.Tag, d.Curve.Eval(float64(level))); err != nil {
			return nil, err
		}
	}
	return spec, nil
}
