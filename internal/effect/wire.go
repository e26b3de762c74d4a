package effect

import (
	"encoding/json"

	"github.com/udisondev/aurafx/internal/gametag"
)

type wireModifier struct {
	Attribute       string   `json:"attribute"`
	Op              string   `json:"op"`
	MagnitudeSource string   `json:"magnitudeSource"`
	Value           *float64 `json:"value,omitempty"`
	Tag             string   `json:"tag,omitempty"`
	Calculator      string   `json:"calculator,omitempty"`
}

type wireTags struct {
	Source []string `json:"source"`
	Target []string `json:"target"`
}

type wireLocation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type wireContext struct {
	ID               string             `json:"id"`
	SourceRef        string             `json:"sourceRef"`
	TargetRef        string             `json:"targetRef"`
	Tags             wireTags           `json:"tags"`
	HitLocation      *wireLocation      `json:"hitLocation,omitempty"`
	AbilityLevel     int32              `json:"abilityLevel"`
	CallerMagnitudes map[string]float64 `json:"callerMagnitudes"`
	Blocked          bool               `json:"blocked"`
	Critical         bool               `json:"critical"`
}

type wireSpec struct {
	Name      string         `json:"name"`
	Level     int32          `json:"level"`
	Modifiers []wireModifier `json:"modifiers"`
	Context   wireContext    `json:"context"`
}

// MarshalJSON encodes the spec in its persistence/debug shape.
// Tags are written by name.
func (s *Spec) MarshalJSON() ([]byte, error) {
	reg := gametag.Default()

	mods := make([]wireModifier, 0, len(s.modifiers))
	for _, m := range s.modifiers {
		wm := wireModifier{
			Attribute:       m.Attribute.String(),
			Op:              m.Op.String(),
			MagnitudeSource: m.Magnitude.Kind.String(),
		}
		switch m.Magnitude.Kind {
		case MagnitudeLiteral, MagnitudeScalable:
			v := m.Magnitude.Value
			wm.Value = &v
		case MagnitudeCalculated:
			if m.Magnitude.Calculator != nil {
				wm.Calculator = m.Magnitude.Calculator.Name()
			}
		case MagnitudeSetByCaller:
			wm.Tag = reg.Name(m.Magnitude.Tag)
		}
		mods = append(mods, wm)
	}

	c := s.ctx
	callers := make(map[string]float64, len(c.callerMagnitudes))
	for tag, v := range c.callerMagnitudes {
		callers[reg.Name(tag)] = v
	}
	wc := wireContext{
		ID:        c.id.String(),
		SourceRef: c.SourceObject().String(),
		TargetRef: c.target.String(),
		Tags: wireTags{
			Source: reg.Names(c.sourceTags),
			Target: reg.Names(c.targetTags),
		},
		AbilityLevel:     c.abilityLevel,
		CallerMagnitudes: callers,
		Blocked:          c.blocked,
		Critical:         c.critical,
	}
	if c.hit != nil {
		wc.HitLocation = &wireLocation{X: c.hit.Location.X, Y: c.hit.Location.Y, Z: c.hit.Location.Z}
	}

	return json.Marshal(wireSpec{
		Name:      s.name,
		Level:     s.level,
		Modifiers: mods,
		Context:   wc,
	})
}
