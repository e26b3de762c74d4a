package config

import (
	"fmt"

	"github.com/udisondev/aurafx/internal/effect"
)

// Combat holds derived-stat formulas and spell definitions.
type Combat struct {
	MaxHealth effect.Formula `yaml:"max_health"`
	MaxMana   effect.Formula `yaml:"max_mana"`
	Spells    []Spell        `yaml:"spells"`
}

// Spell defines a projectile spell.
type Spell struct {
	Name        string       `yaml:"name"`
	Level       int32        `yaml:"level"`
	DamageTypes []DamageType `yaml:"damage_types"`
}

// DamageType is one damage component of a spell with its level curve.
type DamageType struct {
	Tag   string              `yaml:"tag"` // e.g. "Damage.Fire"
	Curve []effect.CurvePoint `yaml:"curve"`
}

// DefaultCombat returns the built-in formulas and spells.
func DefaultCombat() Combat {
	return Combat{
		MaxHealth: effect.DefaultMaxHealthFormula,
		MaxMana:   effect.DefaultMaxManaFormula,
		Spells: []Spell{
			{
				Name:  "Firebolt",
				Level: 1,
				DamageTypes: []DamageType{
					{Tag: "Damage.Fire", Curve: []effect.CurvePoint{{Level: 1, Value: 10}, {Level: 10, Value: 100}}},
				},
			},
			{
				Name:  "ArcLightning",
				Level: 1,
				DamageTypes: []DamageType{
					{Tag: "Damage.Lightning", Curve: []effect.CurvePoint{{Level: 1, Value: 8}, {Level: 10, Value: 80}}},
					{Tag: "Damage.Arcane", Curve: []effect.CurvePoint{{Level: 1, Value: 2}, {Level: 10, Value: 20}}},
				},
			},
		},
	}
}

// Validate checks that every spell is named, unique and has valid curves.
func (c Combat) Validate() error {
	seen := make(map[string]bool, len(c.Spells))
	for i, s := range c.Spells {
		if s.Name == "" {
			return fmt.Errorf("spell %d: empty name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("spell %s: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if s.Level < 1 {
			return fmt.Errorf("spell %s: level must be >= 1", s.Name)
		}
		if len(s.DamageTypes) == 0 {
			return fmt.Errorf("spell %s: no damage types", s.Name)
		}
		for _, d := range s.DamageTypes {
			if d.Tag == "" {
				return fmt.Errorf("spell %s: empty damage tag", s.Name)
			}
			if _, err := effect.NewCurve(d.Curve...); err != nil {
				return fmt.Errorf("spell %s: %s: %w", s.Name, d.Tag, err)
			}
		}
	}
	return nil
}
