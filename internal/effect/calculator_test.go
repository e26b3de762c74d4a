package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/gametag"
	"github.com/udisondev/aurafx/internal/model"
	"github.com/udisondev/aurafx/internal/world"
)

// spawnCharacter registers a character with the given vigor and level.
func spawnCharacter(t *testing.T, reg *world.Registry, name string, vigor float64, level int32) *model.Character {
	t.Helper()
	c := model.NewCharacter(int64(reg.Len()+1), name, model.Vec3{}, level)
	require.NoError(t, c.InitVitals(vigor, 10, 100, 50))
	reg.Register(c)
	return c
}

func selfSpec(tmpl *Template, c *model.Character) *Spec {
	ctx := NewContext(c.Handle(), c.Handle())
	_ = ctx.SetTarget(c.Handle(), c.Handle())
	return tmpl.MakeSpec(ctx, 1)
}

func TestVitalMaxCalculator_Formula(t *testing.T) {
	tests := []struct {
		name  string
		vigor float64
		level int32
		want  float64
	}{
		{"vigor 20 level 5", 20, 5, 180},
		{"negative vigor clamps to zero", -5, 0, 80},
		{"zero everything", 0, 0, 80},
		{"level only", 0, 3, 110},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := world.NewRegistry()
			c := spawnCharacter(t, reg, "Aura", tt.vigor, tt.level)
			spec := selfSpec(DerivedTemplate(DefaultMaxHealthFormula, DefaultMaxManaFormula), c)

			exec := NewExecutor(reg)
			ev := exec.evaluation(spec, c.Attributes())

			got, err := NewMaxHealthCalculator(DefaultMaxHealthFormula).CalculateMagnitude(ev)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestVitalMaxCalculator_MaxMana(t *testing.T) {
	reg := world.NewRegistry()
	c := spawnCharacter(t, reg, "Aura", 0, 2)
	require.NoError(t, c.Attributes().Init(attribute.Intelligence, 8))
	spec := selfSpec(DerivedTemplate(DefaultMaxHealthFormula, DefaultMaxManaFormula), c)

	ev := NewExecutor(reg).evaluation(spec, c.Attributes())
	got, err := NewMaxManaCalculator(DefaultMaxManaFormula).CalculateMagnitude(ev)

	require.NoError(t, err)
	assert.InDelta(t, 50+2.5*8+15*2, got, 1e-9)
}

func TestVitalMaxCalculator_MissingCapability(t *testing.T) {
	reg := world.NewRegistry()
	c := spawnCharacter(t, reg, "Aura", 20, 5)
	trap := model.NewWorldObject("Trap", model.Vec3{})
	reg.Register(trap)

	ctx := NewContext(c.Handle(), c.Handle())
	require.NoError(t, ctx.AddSourceObject(trap.Handle()))
	require.NoError(t, ctx.SetTarget(c.Handle(), c.Handle()))
	spec := DerivedTemplate(DefaultMaxHealthFormula, DefaultMaxManaFormula).MakeSpec(ctx, 1)

	ev := NewExecutor(reg).evaluation(spec, c.Attributes())
	_, err := NewMaxHealthCalculator(DefaultMaxHealthFormula).CalculateMagnitude(ev)

	assert.ErrorIs(t, err, model.ErrMissingCapability)
}

func TestVitalMaxCalculator_StaleSource(t *testing.T) {
	reg := world.NewRegistry()
	c := spawnCharacter(t, reg, "Aura", 20, 5)
	spec := selfSpec(DerivedTemplate(DefaultMaxHealthFormula, DefaultMaxManaFormula), c)
	require.NoError(t, reg.Remove(c.Handle()))

	ev := NewExecutor(reg).evaluation(spec, c.Attributes())
	_, err := NewMaxHealthCalculator(DefaultMaxHealthFormula).CalculateMagnitude(ev)

	assert.ErrorIs(t, err, model.ErrStaleReference)
}

func TestCapturedMagnitude_TagConditionalBonus(t *testing.T) {
	blessed := gametag.Intern("State.Blessed")

	reg := world.NewRegistry()
	c := spawnCharacter(t, reg, "Aura", 20, 5)

	tmpl := DerivedTemplate(DefaultMaxHealthFormula, DefaultMaxManaFormula)
	tmpl.Bonuses = []CaptureBonus{{
		Attribute:         attribute.Vigor,
		Side:              CaptureTarget,
		RequireTargetTags: gametag.NewSet(blessed),
		Add:               4,
	}}
	def := CaptureDef{Attribute: attribute.Vigor, Side: CaptureTarget}

	ev := NewExecutor(reg).evaluation(selfSpec(tmpl, c), c.Attributes())
	v, err := ev.CapturedMagnitude(def, ev.Params())
	require.NoError(t, err)
	assert.Equal(t, 20.0, v, "bonus must not apply without the tag")

	c.AddOwnedTag(blessed)
	ev = NewExecutor(reg).evaluation(selfSpec(tmpl, c), c.Attributes())
	v, err = ev.CapturedMagnitude(def, ev.Params())
	require.NoError(t, err)
	assert.Equal(t, 24.0, v, "owned tags are aggregated into target tags")
}

func TestDamageCalculator_SumsPresentTypes(t *testing.T) {
	ctx := NewContext(model.Handle{}, model.Handle{})
	require.NoError(t, ctx.SetCallerMagnitude(gametag.DamageFire, 12))
	require.NoError(t, ctx.SetCallerMagnitude(gametag.DamageArcane, 3))
	require.NoError(t, ctx.SetCallerMagnitude(gametag.DamagePhysical, 100))

	spec := DamageTemplate("Firebolt", gametag.DamageFire, gametag.DamageArcane, gametag.DamageLightning).MakeSpec(ctx, 1)
	got, err := NewDamageCalculator(gametag.DamageFire, gametag.DamageArcane, gametag.DamageLightning).
		CalculateMagnitude(&Evaluation{spec: spec})

	require.NoError(t, err)
	assert.Equal(t, 15.0, got)
}
