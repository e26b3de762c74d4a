package effect

import (
	"fmt"

	"github.com/udisondev/aurafx/internal/attribute"
)

// Formula is a linear derived-stat formula:
// Base + PerAttribute × max(captured, 0) + PerLevel × level.
type Formula struct {
	Base         float64 `yaml:"base"`
	PerAttribute float64 `yaml:"per_attribute"`
	PerLevel     float64 `yaml:"per_level"`
}

// Default formulas for the vital maximums.
var (
	DefaultMaxHealthFormula = Formula{Base: 80, PerAttribute: 2.5, PerLevel: 10}
	DefaultMaxManaFormula   = Formula{Base: 50, PerAttribute: 2.5, PerLevel: 15}
)

// VitalMaxCalculator derives a vital maximum from one captured primary
// attribute and the source's player level.
type VitalMaxCalculator struct {
	name    string
	capture CaptureDef
	formula Formula
}

// NewMaxHealthCalculator derives MaxHealth from target Vigor.
func NewMaxHealthCalculator(f Formula) *VitalMaxCalculator {
	return &VitalMaxCalculator{
		name:    "MaxHealth",
		capture: CaptureDef{Attribute: attribute.Vigor, Side: CaptureTarget},
		formula: f,
	}
}

// NewMaxManaCalculator derives MaxMana from target Intelligence.
func NewMaxManaCalculator(f Formula) *VitalMaxCalculator {
	return &VitalMaxCalculator{
		name:    "MaxMana",
		capture: CaptureDef{Attribute: attribute.Intelligence, Side: CaptureTarget},
		formula: f,
	}
}

// Name returns the calculator name.
func (c *VitalMaxCalculator) Name() string { return c.name }

// CalculateMagnitude implements Calculator.
// A negative captured value counts as 0. A source without the combat
// capability fails with model.ErrMissingCapability.
func (c *VitalMaxCalculator) CalculateMagnitude(ev *Evaluation) (float64, error) {
	captured, err := ev.CapturedMagnitude(c.capture, ev.Params())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", c.name, err)
	}
	captured = max(captured, 0)

	combatant, err := ev.SourceCombatant()
	if err != nil {
		return 0, fmt.Errorf("%s: player level: %w", c.name, err)
	}
	level := float64(combatant.PlayerLevel())

	return c.formula.Base + c.formula.PerAttribute*captured + c.formula.PerLevel*level, nil
}

// DerivedTemplate returns the effect that recomputes a character's vital
// maximums. It is applied with the character as source, source object and target.
func DerivedTemplate(maxHealth, maxMana Formula) *Template {
	return &Template{
		Name: "DerivedVitals",
		Modifiers: []Modifier{
			{Attribute: attribute.MaxHealth, Op: OpOverride, Magnitude: Calculated(NewMaxHealthCalculator(maxHealth))},
			{Attribute: attribute.MaxMana, Op: OpOverride, Magnitude: Calculated(NewMaxManaCalculator(maxMana))},
		},
	}
}
