package effect

import (
	"errors"

	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/gametag"
	"github.com/udisondev/aurafx/internal/model"
)

// ErrSpecConsumed is returned when a spec is applied a second time.
var ErrSpecConsumed = errors.New("effect spec already consumed")

// Op defines how a modifier combines its magnitude with the current value.
type Op uint8

const (
	OpAdd      Op = iota // current + magnitude
	OpMultiply           // current × magnitude
	OpOverride           // magnitude
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpMultiply:
		return "multiply"
	case OpOverride:
		return "override"
	default:
		return "unknown"
	}
}

// apply combines current with magnitude.
func (o Op) apply(current, magnitude float64) float64 {
	switch o {
	case OpMultiply:
		return current * magnitude
	case OpOverride:
		return magnitude
	default:
		return current + magnitude
	}
}

// MagnitudeKind selects where a modifier's magnitude comes from.
type MagnitudeKind uint8

const (
	MagnitudeLiteral     MagnitudeKind = iota // fixed value
	MagnitudeScalable                         // value × curve(level)
	MagnitudeCalculated                       // Calculator result
	MagnitudeSetByCaller                      // context caller magnitude for Tag
)

func (k MagnitudeKind) String() string {
	switch k {
	case MagnitudeLiteral:
		return "literal"
	case MagnitudeScalable:
		return "scalable"
	case MagnitudeCalculated:
		return "calculator"
	case MagnitudeSetByCaller:
		return "setByCaller"
	default:
		return "unknown"
	}
}

// Magnitude describes a modifier magnitude source.
type Magnitude struct {
	Kind       MagnitudeKind
	Value      float64
	Curve      *Curve
	Calculator Calculator
	Tag        gametag.ID
}

// Literal returns a fixed magnitude.
func Literal(v float64) Magnitude {
	return Magnitude{Kind: MagnitudeLiteral, Value: v}
}

// Scalable returns a magnitude of v scaled by curve at the spec level.
func Scalable(v float64, curve *Curve) Magnitude {
	return Magnitude{Kind: MagnitudeScalable, Value: v, Curve: curve}
}

// Calculated returns a magnitude computed by c.
func Calculated(c Calculator) Magnitude {
	return Magnitude{Kind: MagnitudeCalculated, Calculator: c}
}

// SetByCaller returns a magnitude read from the context for tag.
func SetByCaller(tag gametag.ID) Magnitude {
	return Magnitude{Kind: MagnitudeSetByCaller, Tag: tag}
}

// Modifier changes one attribute.
type Modifier struct {
	Attribute attribute.ID
	Op        Op
	Magnitude Magnitude
}

// CaptureSide selects which character an attribute is captured from.
type CaptureSide uint8

const (
	CaptureTarget CaptureSide = iota
	CaptureSource
)

// CaptureBonus adds Add to a captured attribute when the aggregated tags of
// the application satisfy the requirements (tag-conditional tuning).
type CaptureBonus struct {
	Attribute         attribute.ID
	Side              CaptureSide
	RequireSourceTags gametag.Set
	RequireTargetTags gametag.Set
	Add               float64
}

// Template is a reusable effect definition. Specs are made from it per application.
type Template struct {
	Name      string
	Modifiers []Modifier
	Bonuses   []CaptureBonus
}

// MakeSpec binds the template to ctx at level.
func (t *Template) MakeSpec(ctx *Context, level int32) *Spec {
	mods := make([]Modifier, len(t.Modifiers))
	copy(mods, t.Modifiers)
	bonuses := make([]CaptureBonus, len(t.Bonuses))
	copy(bonuses, t.Bonuses)
	return &Spec{
		name:      t.Name,
		level:     level,
		ctx:       ctx,
		modifiers: mods,
		bonuses:   bonuses,
	}
}

// Spec is one ready-to-apply effect: modifiers bound to a context and a level.
// It is consumed exactly once by an Executor.
type Spec struct {
	name      string
	level     int32
	ctx       *Context
	modifiers []Modifier
	bonuses   []CaptureBonus
	consumed  bool
}

// Name returns the template name.
func (s *Spec) Name() string { return s.name }

// Level returns the ability level the spec was made at.
func (s *Spec) Level() int32 { return s.level }

// Context returns the effect context.
func (s *Spec) Context() *Context { return s.ctx }

// Modifiers returns a copy of the modifiers in declaration order.
func (s *Spec) Modifiers() []Modifier {
	out := make([]Modifier, len(s.modifiers))
	copy(out, s.modifiers)
	return out
}

// Consumed reports whether the spec has been applied.
func (s *Spec) Consumed() bool { return s.consumed }

// WithTarget transfers the spec to a copy whose context targets target.
// The target is its own ability-system owner. The original is marked consumed,
// so a carrier can hand its spec over only once.
func (s *Spec) WithTarget(target model.Handle) (*Spec, error) {
	if s.consumed {
		return nil, ErrSpecConsumed
	}
	s.consumed = true

	cp := *s
	cp.ctx = s.ctx.clone()
	cp.ctx.target, cp.ctx.targetOwner = target, target
	cp.modifiers = s.Modifiers()
	cp.bonuses = make([]CaptureBonus, len(s.bonuses))
	copy(cp.bonuses, s.bonuses)
	cp.consumed = false
	return &cp, nil
}
