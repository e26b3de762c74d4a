package effect

import (
	"fmt"

	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/gametag"
	"github.com/udisondev/aurafx/internal/model"
)

// Calculator computes a modifier magnitude from captured attributes, tags
// and external lookups. Implementations must be deterministic and must not
// mutate any attribute.Set.
type Calculator interface {
	Name() string
	CalculateMagnitude(ev *Evaluation) (float64, error)
}

// CaptureDef selects an attribute to capture and the side to capture it from.
type CaptureDef struct {
	Attribute attribute.ID
	Side      CaptureSide
}

// EvalParams carries the aggregated tags of an application so that
// tag-conditional bonuses apply during capture.
type EvalParams struct {
	SourceTags gametag.Set
	TargetTags gametag.Set
}

// Evaluation is the read-only view a Calculator gets of one application.
type Evaluation struct {
	spec     *Spec
	params   EvalParams
	source   *attribute.Set
	target   *attribute.Set
	resolver model.Resolver
}

// Spec returns the spec being evaluated.
func (ev *Evaluation) Spec() *Spec { return ev.spec }

// Context returns the effect context.
func (ev *Evaluation) Context() *Context { return ev.spec.ctx }

// Level returns the spec level.
func (ev *Evaluation) Level() int32 { return ev.spec.level }

// Params returns the aggregated tag parameters.
func (ev *Evaluation) Params() EvalParams { return ev.params }

// CapturedMagnitude returns the current value of def on its side plus every
// capture bonus of the spec whose tag requirements params satisfies.
func (ev *Evaluation) CapturedMagnitude(def CaptureDef, params EvalParams) (float64, error) {
	store := ev.target
	side := "target"
	if def.Side == CaptureSource {
		store, side = ev.source, "source"
	}
	if store == nil {
		return 0, fmt.Errorf("capture %s from %s: %w", def.Attribute, side, model.ErrStaleReference)
	}

	v, err := store.Get(def.Attribute)
	if err != nil {
		return 0, fmt.Errorf("capture %s from %s: %w", def.Attribute, side, err)
	}
	for _, b := range ev.spec.bonuses {
		if b.Attribute != def.Attribute || b.Side != def.Side {
			continue
		}
		if params.SourceTags.HasAll(b.RequireSourceTags) && params.TargetTags.HasAll(b.RequireTargetTags) {
			v += b.Add
		}
	}
	return v, nil
}

// SourceCombatant resolves the context's source object through the
// capability interface.
func (ev *Evaluation) SourceCombatant() (model.Combatant, error) {
	return model.ResolveCombatant(ev.resolver, ev.spec.ctx.SourceObject())
}

// CallerMagnitude returns the caller-supplied magnitude for tag.
func (ev *Evaluation) CallerMagnitude(tag gametag.ID) (float64, bool) {
	return ev.spec.ctx.CallerMagnitude(tag)
}
