package combat

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/effect"
	"github.com/udisondev/aurafx/internal/gametag"
	"github.com/udisondev/aurafx/internal/model"
)

// State is the damage resolution state.
type State uint8

const (
	StateIdle State = iota
	StateDamageReceived
	StateApplying
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDamageReceived:
		return "damage_received"
	case StateApplying:
		return "applying"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of one pass of the damage state machine.
type Resolution struct {
	State     State
	Damage    float64
	OldHealth float64
	NewHealth float64
	Fatal     bool
	Blocked   bool
	Critical  bool
	// DamageNumber is set when floating text was sent to the source.
	DamageNumber bool
}

// DamageResolver turns IncomingDamage into Health changes and notifications.
type DamageResolver struct {
	resolver model.Resolver
	sink     Sink
	hitReact gametag.Set
}

var _ effect.PostExecuteHook = (*DamageResolver)(nil)

// NewDamageResolver creates a resolver. A nil sink delivers through
// CombatantSink.
func NewDamageResolver(r model.Resolver, sink Sink) *DamageResolver {
	if sink == nil {
		sink = NewCombatantSink(r)
	}
	return &DamageResolver{
		resolver: r,
		sink:     sink,
		hitReact: gametag.NewSet(gametag.EffectsHitReact),
	}
}

// PostExecute resolves damage after every IncomingDamage write.
func (d *DamageResolver) PostExecute(cb *effect.ModCallback) error {
	if cb.Modifier.Attribute != attribute.IncomingDamage {
		return nil
	}
	_, err := d.Resolve(cb.Spec.Context(), cb.Target)
	return err
}

// Resolve runs the state machine once on store.
// IncomingDamage is reset before anything else happens. Health is written
// before notifications, and a notification failure never undoes it.
func (d *DamageResolver) Resolve(ctx *effect.Context, store *attribute.Set) (Resolution, error) {
	damage, err := store.Consume(attribute.IncomingDamage)
	if err != nil {
		return Resolution{State: StateIdle}, fmt.Errorf("resolve damage: %w", err)
	}
	res := Resolution{State: StateIdle, Damage: damage}
	if damage <= 0 {
		return res, nil
	}
	res.State = StateDamageReceived

	health, err := store.Get(attribute.Health)
	if err != nil {
		return res, fmt.Errorf("resolve damage: %w", err)
	}
	maxHealth, err := store.Get(attribute.MaxHealth)
	if err != nil {
		return res, fmt.Errorf("resolve damage: %w", err)
	}

	res.State = StateApplying
	res.OldHealth = health
	res.NewHealth = min(max(health-damage, 0), maxHealth)
	if err := store.Set(attribute.Health, res.NewHealth); err != nil {
		return res, fmt.Errorf("resolve damage: %w", err)
	}
	res.Fatal = health-damage <= 0

	props := ResolveProperties(d.resolver, ctx)
	if res.Fatal {
		d.deliver("died", d.sink.Died(props.TargetHandle))
	} else {
		d.deliver("hit react", d.sink.HitReact(props.TargetHandle, d.hitReact))
	}

	res.Blocked = effect.IsBlockedHit(ctx)
	res.Critical = effect.IsCriticalHit(ctx)
	if !props.SelfInflicted() {
		err := d.sink.ShowDamageNumber(props.SourceHandle, damage, props.TargetHandle, res.Blocked, res.Critical)
		d.deliver("damage number", err)
		res.DamageNumber = err == nil
	}

	res.State = StateResolved
	slog.Debug("damage resolved",
		"owner", store.Owner(),
		"damage", damage,
		"health", res.NewHealth,
		"fatal", res.Fatal,
		"blocked", res.Blocked,
		"critical", res.Critical)

	return res, nil
}

// deliver logs a failed notification. Stale actors and sources without a
// presenter are expected.
func (d *DamageResolver) deliver(what string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, model.ErrStaleReference) || errors.Is(err, ErrNoPresenter) {
		slog.Debug("notification dropped", "notification", what, "error", err)
		return
	}
	slog.Warn("notification failed", "notification", what, "error", err)
}
