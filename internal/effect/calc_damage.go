package effect

import (
	"log/slog"

	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/gametag"
)

// DamageCalculator sums the caller-supplied magnitudes of the configured
// damage types into one damage value. A damage type the caller did not set
// contributes 0.
type DamageCalculator struct {
	types []gametag.ID
}

// NewDamageCalculator creates a calculator over the given damage type tags.
func NewDamageCalculator(types ...gametag.ID) *DamageCalculator {
	cp := make([]gametag.ID, len(types))
	copy(cp, types)
	return &DamageCalculator{types: cp}
}

// Name returns the calculator name.
func (c *DamageCalculator) Name() string { return "Damage" }

// CalculateMagnitude implements Calculator.
func (c *DamageCalculator) CalculateMagnitude(ev *Evaluation) (float64, error) {
	total := 0.0
	for _, tag := range c.types {
		v, ok := ev.CallerMagnitude(tag)
		if !ok {
			continue
		}
		total += v
	}
	return total, nil
}

// DamageTemplate returns an effect that writes the summed damage of the
// given damage types into IncomingDamage.
func DamageTemplate(name string, types ...gametag.ID) *Template {
	return &Template{
		Name: name,
		Modifiers: []Modifier{
			{Attribute: attribute.IncomingDamage, Op: OpAdd, Magnitude: Calculated(NewDamageCalculator(types...))},
		},
	}
}

// callerMagnitude resolves a set-by-caller magnitude. A missing tag is a
// content error, not a fault: it logs and evaluates to 0.
func callerMagnitude(spec *Spec, tag gametag.ID) float64 {
	v, ok := spec.ctx.CallerMagnitude(tag)
	if !ok {
		slog.Warn("set-by-caller magnitude not found",
			"effect", spec.name,
			"tag", tag.String(),
			"context", spec.ctx.id)
		return 0
	}
	return v
}
