package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/aurafx/internal/ability"
	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/combat"
	"github.com/udisondev/aurafx/internal/effect"
	"github.com/udisondev/aurafx/internal/gametag"
	"github.com/udisondev/aurafx/internal/model"
	"github.com/udisondev/aurafx/internal/spell"
	"github.com/udisondev/aurafx/internal/world"
)

type fixture struct {
	reg  *world.Registry
	exec *effect.Executor
	proc *Processor
}

func newFixture() *fixture {
	reg := world.NewRegistry()
	exec := effect.NewExecutor(reg, combat.NewDamageResolver(reg, nil))
	derived := effect.DerivedTemplate(effect.DefaultMaxHealthFormula, effect.DefaultMaxManaFormula)
	return &fixture{
		reg:  reg,
		exec: exec,
		proc: NewProcessor(reg, exec, derived),
	}
}

func (f *fixture) character(t *testing.T, id int64, name string, opts ...model.CharacterOption) *model.Character {
	t.Helper()
	c := model.NewCharacter(id, name, model.Vec3{}, 1, opts...)
	require.NoError(t, c.InitVitals(10, 10, 100, 50))
	f.reg.Register(c)
	return c
}

func vigorSpec(to *model.Character, op effect.Op, v float64) *effect.Spec {
	ctx := effect.NewContext(to.Handle(), to.Handle())
	_ = ctx.SetTarget(to.Handle(), to.Handle())
	tmpl := &effect.Template{Name: "Vigor", Modifiers: []effect.Modifier{
		{Attribute: attribute.Vigor, Op: op, Magnitude: effect.Literal(v)},
	}}
	return tmpl.MakeSpec(ctx, 1)
}

func value(t *testing.T, c *model.Character, id attribute.ID) float64 {
	t.Helper()
	v, err := c.Attributes().Get(id)
	require.NoError(t, err)
	return v
}

func TestProcessor_ArrivalOrder(t *testing.T) {
	f := newFixture()
	c := f.character(t, 1, "Aura")

	f.proc.Submit(vigorSpec(c, effect.OpOverride, 5))
	f.proc.Submit(vigorSpec(c, effect.OpMultiply, 3))
	f.proc.Submit(vigorSpec(c, effect.OpAdd, 1))

	assert.Equal(t, 3, f.proc.Pending())
	assert.Equal(t, 3, f.proc.Drain())
	assert.Equal(t, 0, f.proc.Pending())
	assert.Equal(t, 16.0, value(t, c, attribute.Vigor))
}

func TestProcessor_RecomputesDerivedVitals(t *testing.T) {
	f := newFixture()
	c := model.NewCharacter(1, "Aura", model.Vec3{}, 5)
	require.NoError(t, c.InitVitals(0, 0, 100, 50))
	f.reg.Register(c)

	f.proc.Submit(vigorSpec(c, effect.OpOverride, 20))
	f.proc.Drain()

	assert.Equal(t, 180.0, value(t, c, attribute.MaxHealth))
	assert.Equal(t, 50+15*5.0, value(t, c, attribute.MaxMana))
	assert.Equal(t, 100.0, value(t, c, attribute.Health), "raising max does not heal")
}

func TestProcessor_RecomputeClampsNegativeVigor(t *testing.T) {
	f := newFixture()
	c := model.NewCharacter(1, "Aura", model.Vec3{}, 0)
	require.NoError(t, c.InitVitals(0, 0, 100, 50))
	f.reg.Register(c)

	f.proc.Submit(vigorSpec(c, effect.OpOverride, -5))
	f.proc.Drain()

	assert.Equal(t, 80.0, value(t, c, attribute.MaxHealth))
	assert.Equal(t, 80.0, value(t, c, attribute.Health), "lowering max re-clamps health")
}

func TestProcessor_DropsStaleTarget(t *testing.T) {
	f := newFixture()
	c := f.character(t, 1, "Aura")
	spec := vigorSpec(c, effect.OpAdd, 1)
	require.NoError(t, f.reg.Remove(c.Handle()))

	f.proc.Submit(spec)

	assert.Equal(t, 0, f.proc.Drain())
	assert.Equal(t, 10.0, value(t, c, attribute.Vigor))
}

func TestProcessor_ReentrantSubmitRunsInSameDrain(t *testing.T) {
	f := newFixture()
	attacker := f.character(t, 1, "Aura")
	victim := f.character(t, 2, "Goblin")

	// The victim's hit reaction hardens it.
	victim.Abilities().Grant(ability.NewFunc("Harden", gametag.NewSet(gametag.EffectsHitReact), func(int32) error {
		f.proc.Submit(vigorSpec(victim, effect.OpAdd, 5))
		return nil
	}), 1)

	ctx := effect.NewContext(attacker.Handle(), attacker.Handle())
	require.NoError(t, ctx.SetTarget(victim.Handle(), victim.Handle()))
	require.NoError(t, ctx.SetCallerMagnitude(gametag.DamagePhysical, 30))
	f.proc.Submit(effect.DamageTemplate("Slash", gametag.DamagePhysical).MakeSpec(ctx, 1))

	assert.Equal(t, 2, f.proc.Drain())
	assert.Equal(t, 70.0, value(t, victim, attribute.Health))
	assert.Equal(t, 15.0, value(t, victim, attribute.Vigor))
	assert.Equal(t, 80+2.5*15+10.0, value(t, victim, attribute.MaxHealth))
}

func TestProcessor_ConcurrentSubmit(t *testing.T) {
	f := newFixture()
	c := f.character(t, 1, "Aura")

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.proc.Submit(vigorSpec(c, effect.OpAdd, 1))
		}()
	}
	wg.Wait()

	assert.Equal(t, n, f.proc.Drain())
	assert.Equal(t, 10.0+n, value(t, c, attribute.Vigor))
}

func TestProcessor_Run(t *testing.T) {
	f := newFixture()
	c := f.character(t, 1, "Aura")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.proc.Run(ctx, time.Millisecond) }()

	f.proc.Submit(vigorSpec(c, effect.OpAdd, 2))
	assert.Eventually(t, func() bool {
		v, _ := c.Attributes().Get(attribute.Vigor)
		return v == 12
	}, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestFireboltEndToEnd(t *testing.T) {
	f := newFixture()
	caster := f.character(t, 1, "Aura", model.WithAuthority())
	victim := f.character(t, 2, "Goblin")
	require.NoError(t, victim.Attributes().Init(attribute.Health, 50))

	fire, err := effect.NewCurve(effect.CurvePoint{Level: 1, Value: 30}, effect.CurvePoint{Level: 10, Value: 120})
	require.NoError(t, err)
	bolt, err := spell.NewProjectileSpell("Firebolt", 1, []spell.DamageType{{Tag: gametag.DamageFire, Curve: fire}},
		spell.NewSpawner(f.reg, f.proc))
	require.NoError(t, err)

	p, err := bolt.SpawnProjectile(caster, victim.Location())
	require.NoError(t, err)
	require.NoError(t, p.Impact(victim.Handle()))
	require.Equal(t, 1, f.proc.Drain())

	assert.Equal(t, 20.0, value(t, victim, attribute.Health))
	assert.Equal(t, 0.0, value(t, victim, attribute.IncomingDamage))
	assert.False(t, victim.IsDead())

	p, err = bolt.SpawnProjectile(caster, victim.Location())
	require.NoError(t, err)
	require.NoError(t, p.Impact(victim.Handle()))
	f.proc.Drain()

	assert.Equal(t, 0.0, value(t, victim, attribute.Health))
	assert.True(t, victim.IsDead())
}

type listenerSpy struct {
	names []string
}

func (l *listenerSpy) EffectApplied(spec *effect.Spec, _ *attribute.Set, res effect.Result) {
	l.names = append(l.names, spec.Name()+":"+res.Spec)
}

func TestProcessor_NotifiesListeners(t *testing.T) {
	f := newFixture()
	c := f.character(t, 1, "Aura")
	spy := &listenerSpy{}
	f.proc.AddListener(spy)

	f.proc.Submit(vigorSpec(c, effect.OpAdd, 1))
	f.proc.Drain()

	assert.Equal(t, []string{"Vigor:Vigor"}, spy.names)
}

func TestProcessor_ExecRunsBehindPendingSpecs(t *testing.T) {
	f := newFixture()
	c := f.character(t, 1, "Aura")

	f.proc.Submit(vigorSpec(c, effect.OpOverride, 7))

	var seen float64
	err := f.proc.Exec(context.Background(), func() error {
		seen = value(t, c, attribute.Vigor)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7.0, seen)
	assert.Equal(t, 0, f.proc.Pending())
}

func TestProcessor_ExecReturnsFunctionError(t *testing.T) {
	f := newFixture()
	want := errors.New("init failed")

	err := f.proc.Exec(context.Background(), func() error { return want })

	assert.ErrorIs(t, err, want)
}

func TestProcessor_ExecWhileRunning(t *testing.T) {
	f := newFixture()
	c := f.character(t, 1, "Aura")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- f.proc.Run(ctx, time.Millisecond) }()

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.proc.Submit(vigorSpec(c, effect.OpAdd, 1))
			assert.NoError(t, f.proc.Exec(ctx, func() error { return nil }))
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, f.proc.Pending())
	assert.Equal(t, 10.0+n, value(t, c, attribute.Vigor))

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestProcessor_RecomputeGoesThroughQueue(t *testing.T) {
	f := newFixture()
	c := model.NewCharacter(1, "Aura", model.Vec3{}, 5)
	require.NoError(t, c.InitVitals(20, 8, 0, 0))
	f.reg.Register(c)

	f.proc.Submit(vigorSpec(c, effect.OpAdd, 4))
	require.NoError(t, f.proc.Recompute(context.Background(), c))

	assert.Equal(t, 80+2.5*24+10*5.0, value(t, c, attribute.MaxHealth))
	assert.Equal(t, 50+2.5*8+15*5.0, value(t, c, attribute.MaxMana))
}
