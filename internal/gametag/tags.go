package gametag

// Well-known tags used by the combat pipeline.
var (
	EffectsHitReact = Intern("Effects.HitReact")

	DamageFire      = Intern("Damage.Fire")
	DamageLightning = Intern("Damage.Lightning")
	DamageArcane    = Intern("Damage.Arcane")
	DamagePhysical  = Intern("Damage.Physical")
)

// DamageTypes returns the built-in damage type tags.
func DamageTypes() []ID {
	return []ID{DamageFire, DamageLightning, DamageArcane, DamagePhysical}
}
