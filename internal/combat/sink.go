package combat

import (
	"errors"
	"fmt"

	"github.com/udisondev/aurafx/internal/gametag"
	"github.com/udisondev/aurafx/internal/model"
)

// ErrNoPresenter is returned by ShowDamageNumber when the source has no
// presentation layer, so no floating text was shown.
var ErrNoPresenter = errors.New("source has no damage presenter")

// Sink receives the consequences of a damage resolution.
// Methods return model.ErrStaleReference when the addressed actor is gone.
type Sink interface {
	Died(target model.Handle) error
	HitReact(target model.Handle, tags gametag.Set) error
	ShowDamageNumber(source model.Handle, amount float64, target model.Handle, blocked, critical bool) error
}

// CombatantSink delivers notifications through the actors' capability interfaces.
type CombatantSink struct {
	resolver model.Resolver
}

var _ Sink = (*CombatantSink)(nil)

// NewCombatantSink creates a sink resolving handles through r.
func NewCombatantSink(r model.Resolver) *CombatantSink {
	return &CombatantSink{resolver: r}
}

// Died invokes Die on the target.
func (s *CombatantSink) Died(target model.Handle) error {
	c, err := model.ResolveCombatant(s.resolver, target)
	if err != nil {
		return fmt.Errorf("died: %w", err)
	}
	c.Die()
	return nil
}

// HitReact activates the target's abilities matching tags.
func (s *CombatantSink) HitReact(target model.Handle, tags gametag.Set) error {
	c, err := model.ResolveCombatant(s.resolver, target)
	if err != nil {
		return fmt.Errorf("hit react: %w", err)
	}
	c.TryActivateAbilitiesByTag(tags)
	return nil
}

// ShowDamageNumber forwards floating text to the source's presentation layer.
// A source without one yields ErrNoPresenter.
func (s *CombatantSink) ShowDamageNumber(source model.Handle, amount float64, target model.Handle, blocked, critical bool) error {
	if s.resolver == nil {
		return fmt.Errorf("damage number: actor %s: %w", source, model.ErrStaleReference)
	}
	a, ok := s.resolver.Resolve(source)
	if !ok {
		return fmt.Errorf("damage number: actor %s: %w", source, model.ErrStaleReference)
	}
	p, ok := a.(model.DamagePresenter)
	if !ok {
		return fmt.Errorf("damage number: actor %s: %w", source, ErrNoPresenter)
	}
	p.ShowDamageNumber(amount, target, blocked, critical)
	return nil
}
