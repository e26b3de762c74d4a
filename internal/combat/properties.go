package combat

import (
	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/effect"
	"github.com/udisondev/aurafx/internal/model"
)

// Properties are the actors of one damage resolution, resolved from the
// effect context at resolution time. A stale handle leaves its side nil.
type Properties struct {
	SourceHandle model.Handle
	TargetHandle model.Handle

	Source      model.Combatant
	Target      model.Combatant
	SourceStore *attribute.Set
	TargetStore *attribute.Set
}

// ResolveProperties resolves source and target ability-system owners of ctx.
func ResolveProperties(r model.Resolver, ctx *effect.Context) Properties {
	p := Properties{
		SourceHandle: ctx.SourceOwner(),
		TargetHandle: ctx.TargetOwner(),
	}
	if c, err := model.ResolveCombatant(r, p.SourceHandle); err == nil {
		p.Source, p.SourceStore = c, c.Attributes()
	}
	if c, err := model.ResolveCombatant(r, p.TargetHandle); err == nil {
		p.Target, p.TargetStore = c, c.Attributes()
	}
	return p
}

// SelfInflicted reports whether source and target are the same entity.
func (p Properties) SelfInflicted() bool {
	return !p.SourceHandle.IsZero() && p.SourceHandle == p.TargetHandle
}
