package effect

import (
	"errors"
	"fmt"
	"sort"
)

// CurvePoint is one key of a level-keyed curve.
type CurvePoint struct {
	Level float64 `yaml:"level"`
	Value float64 `yaml:"value"`
}

// Curve maps a level to a value by linear interpolation between keys.
// Levels outside the key range evaluate to the nearest end key.
type Curve struct {
	points []CurvePoint
}

// NewCurve creates a curve from keys in any order. Levels must be unique.
func NewCurve(points ...CurvePoint) (*Curve, error) {
	if len(points) == 0 {
		return nil, errors.New("curve has no keys")
	}
	sorted := make([]CurvePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Level == sorted[i-1].Level {
			return nil, fmt.Errorf("curve has duplicate key at level %v", sorted[i].Level)
		}
	}
	return &Curve{points: sorted}, nil
}

// ConstantCurve returns a curve that evaluates to v at every level.
func ConstantCurve(v float64) *Curve {
	return &Curve{points: []CurvePoint{{Level: 1, Value: v}}}
}

// Eval returns the value at level. A nil or empty curve evaluates to 0.
func (c *Curve) Eval(level float64) float64 {
	if c == nil || len(c.points) == 0 {
		return 0
	}
	pts := c.points
	if level <= pts[0].Level {
		return pts[0].Value
	}
	last := pts[len(pts)-1]
	if level >= last.Level {
		return last.Value
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Level >= level })
	lo, hi := pts[i-1], pts[i]
	t := (level - lo.Level) / (hi.Level - lo.Level)
	return lo.Value + t*(hi.Value-lo.Value)
}

// Points returns a copy of the curve keys in level order.
func (c *Curve) Points() []CurvePoint {
	if c == nil {
		return nil
	}
	out := make([]CurvePoint, len(c.points))
	copy(out, c.points)
	return out
}
