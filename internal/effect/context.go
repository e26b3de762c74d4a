package effect

import (
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/udisondev/aurafx/internal/gametag"
	"github.com/udisondev/aurafx/internal/model"
)

// ErrContextSealed is returned when a sealed context is modified.
var ErrContextSealed = errors.New("effect context is sealed")

// HitResult describes where an effect landed.
type HitResult struct {
	Location model.Vec3
}

// Context describes one effect application: who caused it, through what,
// where it hit, and caller-supplied per-tag magnitudes.
//
// A Context is writable while it is being built and sealed when an Executor
// takes it; after that every setter fails with ErrContextSealed.
// Actor references are weak handles, resolved at use time.
type Context struct {
	id uuid.UUID

	instigator   model.Handle // source actor
	sourceOwner  model.Handle // source ability-system owner
	sourceObject model.Handle // e.g. the projectile carrying the effect
	target       model.Handle
	targetOwner  model.Handle
	actors       []model.Handle

	abilityName  string
	abilityLevel int32

	sourceTags gametag.Set
	targetTags gametag.Set

	hit *HitResult

	callerMagnitudes map[gametag.ID]float64

	blocked  bool
	critical bool

	sealed bool
}

// NewContext creates a context for an effect caused by instigator, whose
// abilities are owned by sourceOwner (usually the same actor).
func NewContext(instigator, sourceOwner model.Handle) *Context {
	return &Context{
		id:               uuid.New(),
		instigator:       instigator,
		sourceOwner:      sourceOwner,
		callerMagnitudes: make(map[gametag.ID]float64, 4),
	}
}

// ID returns the unique id of this application.
func (c *Context) ID() uuid.UUID { return c.id }

// Instigator returns the source actor handle.
func (c *Context) Instigator() model.Handle { return c.instigator }

// SourceOwner returns the source ability-system owner handle.
func (c *Context) SourceOwner() model.Handle { return c.sourceOwner }

// SourceObject returns the source object, falling back to the instigator.
func (c *Context) SourceObject() model.Handle {
	if c.sourceObject.IsZero() {
		return c.instigator
	}
	return c.sourceObject
}

// Target returns the target actor handle.
func (c *Context) Target() model.Handle { return c.target }

// TargetOwner returns the target ability-system owner, falling back to the target.
func (c *Context) TargetOwner() model.Handle {
	if c.targetOwner.IsZero() {
		return c.target
	}
	return c.targetOwner
}

// Actors returns a copy of the affected actors list.
func (c *Context) Actors() []model.Handle {
	out := make([]model.Handle, len(c.actors))
	copy(out, c.actors)
	return out
}

// Ability returns the casting ability name and its level at cast time.
func (c *Context) Ability() (string, int32) { return c.abilityName, c.abilityLevel }

// SourceTags returns a copy of the aggregated source tags.
func (c *Context) SourceTags() gametag.Set { return c.sourceTags.Clone() }

// TargetTags returns a copy of the aggregated target tags.
func (c *Context) TargetTags() gametag.Set { return c.targetTags.Clone() }

// HitResult returns the hit result, if one was attached.
func (c *Context) HitResult() (HitResult, bool) {
	if c.hit == nil {
		return HitResult{}, false
	}
	return *c.hit, true
}

// CallerMagnitude returns the caller-supplied magnitude for tag.
func (c *Context) CallerMagnitude(tag gametag.ID) (float64, bool) {
	v, ok := c.callerMagnitudes[tag]
	return v, ok
}

// CallerMagnitudes returns a copy of all caller-supplied magnitudes.
func (c *Context) CallerMagnitudes() map[gametag.ID]float64 {
	return maps.Clone(c.callerMagnitudes)
}

// Sealed reports whether the context has been handed to an Executor.
func (c *Context) Sealed() bool { return c.sealed }

// SetAbility records the casting ability and its level.
func (c *Context) SetAbility(name string, level int32) error {
	if c.sealed {
		return fmt.Errorf("set ability: %w", ErrContextSealed)
	}
	c.abilityName, c.abilityLevel = name, level
	return nil
}

// AddSourceObject records the object that carries the effect.
func (c *Context) AddSourceObject(h model.Handle) error {
	if c.sealed {
		return fmt.Errorf("add source object: %w", ErrContextSealed)
	}
	c.sourceObject = h
	return nil
}

// AddActors appends affected actors.
func (c *Context) AddActors(hs ...model.Handle) error {
	if c.sealed {
		return fmt.Errorf("add actors: %w", ErrContextSealed)
	}
	c.actors = append(c.actors, hs...)
	return nil
}

// AddHitResult records where the effect landed.
func (c *Context) AddHitResult(hit HitResult) error {
	if c.sealed {
		return fmt.Errorf("add hit result: %w", ErrContextSealed)
	}
	c.hit = &hit
	return nil
}

// AddSourceTags merges tags into the aggregated source tags.
func (c *Context) AddSourceTags(tags gametag.Set) error {
	if c.sealed {
		return fmt.Errorf("add source tags: %w", ErrContextSealed)
	}
	c.sourceTags = gametag.Union(c.sourceTags, tags)
	return nil
}

// AddTargetTags merges tags into the aggregated target tags.
func (c *Context) AddTargetTags(tags gametag.Set) error {
	if c.sealed {
		return fmt.Errorf("add target tags: %w", ErrContextSealed)
	}
	c.targetTags = gametag.Union(c.targetTags, tags)
	return nil
}

// SetTarget binds the target actor and its ability-system owner.
func (c *Context) SetTarget(target, targetOwner model.Handle) error {
	if c.sealed {
		return fmt.Errorf("set target: %w", ErrContextSealed)
	}
	c.target, c.targetOwner = target, targetOwner
	return nil
}

// SetCallerMagnitude stores the caller-supplied magnitude for tag.
// Other tags are not affected.
func (c *Context) SetCallerMagnitude(tag gametag.ID, v float64) error {
	if c.sealed {
		return fmt.Errorf("set caller magnitude %s: %w", tag, ErrContextSealed)
	}
	c.callerMagnitudes[tag] = v
	return nil
}

// SetBlockedHit marks the hit as blocked.
func (c *Context) SetBlockedHit(blocked bool) error {
	if c.sealed {
		return fmt.Errorf("set blocked: %w", ErrContextSealed)
	}
	c.blocked = blocked
	return nil
}

// SetCriticalHit marks the hit as critical.
func (c *Context) SetCriticalHit(critical bool) error {
	if c.sealed {
		return fmt.Errorf("set critical: %w", ErrContextSealed)
	}
	c.critical = critical
	return nil
}

// seal freezes the context. Called by the Executor.
func (c *Context) seal() { c.sealed = true }

// clone returns an unsealed deep copy with the same id.
func (c *Context) clone() *Context {
	cp := *c
	cp.actors = c.Actors()
	cp.sourceTags = c.sourceTags.Clone()
	cp.targetTags = c.targetTags.Clone()
	cp.callerMagnitudes = maps.Clone(c.callerMagnitudes)
	if cp.callerMagnitudes == nil {
		cp.callerMagnitudes = make(map[gametag.ID]float64, 4)
	}
	if c.hit != nil {
		hit := *c.hit
		cp.hit = &hit
	}
	cp.sealed = false
	return &cp
}

// IsBlockedHit reports whether the effect was blocked. Nil-safe.
func IsBlockedHit(c *Context) bool {
	return c != nil && c.blocked
}

// IsCriticalHit reports whether the effect was a critical hit. Nil-safe.
func IsCriticalHit(c *Context) bool {
	return c != nil && c.critical
}
