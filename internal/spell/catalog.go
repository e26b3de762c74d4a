package spell

import (
	"fmt"

	"github.com/udisondev/aurafx/internal/config"
	"github.com/udisondev/aurafx/internal/effect"
	"github.com/udisondev/aurafx/internal/gametag"
)

// Catalog holds the configured spells by name.
type Catalog map[string]*ProjectileSpell

// NewCatalog builds projectile spells from their definitions.
// Damage tags are interned on the way.
func NewCatalog(defs []config.Spell, spawner *Spawner) (Catalog, error) {
	c := make(Catalog, len(defs))
	for _, def := range defs {
		damage := make([]DamageType, 0, len(def.DamageTypes))
		for _, d := range def.DamageTypes {
			curve, err := effect.NewCurve(d.Curve...)
			if err != nil {
				return nil, fmt.Errorf("spell %s: %s: %w", def.Name, d.Tag, err)
			}
			damage = append(damage, DamageType{Tag: gametag.Intern(d.Tag), Curve: curve})
		}
		s, err := NewProjectileSpell(def.Name, def.Level, damage, spawner)
		if err != nil {
			return nil, err
		}
		c[def.Name] = s
	}
	return c, nil
}

// Get returns the spell named name.
func (c Catalog) Get(name string) (*ProjectileSpell, bool) {
	s, ok := c[name]
	return s, ok
}
