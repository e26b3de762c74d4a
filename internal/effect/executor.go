package effect

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/gametag"
	"github.com/udisondev/aurafx/internal/model"
)

// ModCallback describes one committed modifier write, passed to hooks.
type ModCallback struct {
	Spec      *Spec
	Modifier  Modifier
	Magnitude float64
	Target    *attribute.Set
	Old       float64
	New       float64
}

// PostExecuteHook reacts to a committed modifier write on the target
// (e.g. consuming a meta attribute). Hooks run in registration order.
type PostExecuteHook interface {
	PostExecute(cb *ModCallback) error
}

// Applied records one modifier write.
type Applied struct {
	Attribute attribute.ID
	Op        Op
	Magnitude float64
	Old       float64
	New       float64
}

// Result lists the writes of one Apply in declaration order.
type Result struct {
	Spec    string
	Applied []Applied
}

// Touched reports whether the result wrote id.
func (r Result) Touched(id attribute.ID) bool {
	for _, a := range r.Applied {
		if a.Attribute == id {
			return true
		}
	}
	return false
}

// Executor applies effect specs to attribute sets.
//
// Not safe for concurrent Apply calls on the same target: callers funnel
// every application for a character through one processing point (sim.Processor).
type Executor struct {
	resolver model.Resolver
	hooks    []PostExecuteHook
}

// NewExecutor creates an executor resolving actor handles through resolver.
func NewExecutor(resolver model.Resolver, hooks ...PostExecuteHook) *Executor {
	return &Executor{
		resolver: resolver,
		hooks:    hooks,
	}
}

// AddHook registers a post-execute hook.
func (e *Executor) AddHook(h PostExecuteHook) {
	e.hooks = append(e.hooks, h)
}

// Apply seals the spec context, evaluates every modifier magnitude and
// validates every target attribute, then writes the modifiers in declaration
// order, running hooks after each write. Nothing is written if evaluation or
// validation fails. Meta attributes are left for hooks to consume.
func (e *Executor) Apply(spec *Spec, target *attribute.Set) (Result, error) {
	if spec.consumed {
		return Result{}, fmt.Errorf("apply %s: %w", spec.name, ErrSpecConsumed)
	}
	spec.consumed = true
	spec.ctx.seal()

	ev := e.evaluation(spec, target)

	magnitudes := make([]float64, len(spec.modifiers))
	for i, mod := range spec.modifiers {
		m, err := e.magnitude(ev, mod.Magnitude)
		if err != nil {
			return Result{}, fmt.Errorf("apply %s: modifier %d (%s): %w", spec.name, i, mod.Attribute, err)
		}
		if !target.Has(mod.Attribute) {
			return Result{}, fmt.Errorf("apply %s: modifier %d: %s: %w", spec.name, i, mod.Attribute, attribute.ErrUnknownAttribute)
		}
		magnitudes[i] = m
	}

	result := Result{Spec: spec.name, Applied: make([]Applied, 0, len(spec.modifiers))}
	for i, mod := range spec.modifiers {
		old, err := target.Get(mod.Attribute)
		if err != nil {
			return result, fmt.Errorf("apply %s: %w", spec.name, err)
		}
		if err := target.Set(mod.Attribute, mod.Op.apply(old, magnitudes[i])); err != nil {
			return result, fmt.Errorf("apply %s: %w", spec.name, err)
		}
		stored, err := target.Get(mod.Attribute)
		if err != nil {
			return result, fmt.Errorf("apply %s: %w", spec.name, err)
		}

		result.Applied = append(result.Applied, Applied{
			Attribute: mod.Attribute,
			Op:        mod.Op,
			Magnitude: magnitudes[i],
			Old:       old,
			New:       stored,
		})

		cb := &ModCallback{
			Spec:      spec,
			Modifier:  mod,
			Magnitude: magnitudes[i],
			Target:    target,
			Old:       old,
			New:       stored,
		}
		for _, h := range e.hooks {
			if err := h.PostExecute(cb); err != nil {
				return result, fmt.Errorf("apply %s: post-execute %s: %w", spec.name, mod.Attribute, err)
			}
		}
	}

	slog.Debug("effect applied",
		"effect", spec.name,
		"context", spec.ctx.id,
		"target", spec.ctx.target,
		"level", spec.level,
		"modifiers", len(result.Applied))

	return result, nil
}

// evaluation builds the calculator view: resolves the source store and
// aggregates context tags with the owned tags of both sides.
func (e *Executor) evaluation(spec *Spec, target *attribute.Set) *Evaluation {
	ctx := spec.ctx
	params := EvalParams{
		SourceTags: ctx.sourceTags.Clone(),
		TargetTags: ctx.targetTags.Clone(),
	}

	var source *attribute.Set
	if c, err := model.ResolveCombatant(e.resolver, ctx.sourceOwner); err == nil {
		source = c.Attributes()
		params.SourceTags = gametag.Union(params.SourceTags, ownedTags(c))
	}
	if c, err := model.ResolveCombatant(e.resolver, ctx.TargetOwner()); err == nil {
		params.TargetTags = gametag.Union(params.TargetTags, ownedTags(c))
	}

	return &Evaluation{
		spec:     spec,
		params:   params,
		source:   source,
		target:   target,
		resolver: e.resolver,
	}
}

func (e *Executor) magnitude(ev *Evaluation, m Magnitude) (float64, error) {
	switch m.Kind {
	case MagnitudeLiteral:
		return m.Value, nil
	case MagnitudeScalable:
		if m.Curve == nil {
			return m.Value, nil
		}
		return m.Value * m.Curve.Eval(float64(ev.Level())), nil
	case MagnitudeCalculated:
		if m.Calculator == nil {
			return 0, fmt.Errorf("calculated magnitude without calculator")
		}
		return m.Calculator.CalculateMagnitude(ev)
	case MagnitudeSetByCaller:
		return callerMagnitude(ev.spec, m.Tag), nil
	default:
		return 0, fmt.Errorf("unknown magnitude kind %d", m.Kind)
	}
}

func ownedTags(a model.Actor) gametag.Set {
	if t, ok := a.(model.TagOwner); ok {
		return t.OwnedTags()
	}
	return gametag.Set{}
}
