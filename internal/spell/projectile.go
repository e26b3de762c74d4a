package spell

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/aurafx/internal/effect"
	"github.com/udisondev/aurafx/internal/model"
	"github.com/udisondev/aurafx/internal/world"
)

var (
	// ErrNotPending is returned when configuring, activating or cancelling
	// a projectile that already left the construction phase.
	ErrNotPending = errors.New("projectile is not pending")
	// ErrNotActive is returned on impact of a projectile that is not in flight.
	ErrNotActive = errors.New("projectile is not active")
	// ErrNoDamage is returned for a spell without damage types or with a
	// damage type that has no curve.
	ErrNoDamage = errors.New("spell has no damage curve")
)

// Submitter accepts specs bound to a target for application.
type Submitter interface {
	Submit(spec *effect.Spec)
}

type projectileState uint8

const (
	statePending projectileState = iota
	stateActive
	stateDestroyed
)

// Projectile carries an effect spec from the caster to whatever it hits.
type Projectile struct {
	*model.WorldObject

	spawner  *Spawner
	owner    model.Handle
	rotation model.Rotator

	mu    sync.Mutex
	spec  *effect.Spec
	state projectileState
}

// Owner returns the caster's handle.
func (p *Projectile) Owner() model.Handle { return p.owner }

// Rotation returns the launch orientation.
func (p *Projectile) Rotation() model.Rotator { return p.rotation }

// Spec returns the carried spec.
func (p *Projectile) Spec() *effect.Spec {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spec
}

// Configure attaches the spec to carry. Allowed only before activation.
func (p *Projectile) Configure(spec *effect.Spec) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != statePending {
		return fmt.Errorf("configure %s: %w", p.Handle(), ErrNotPending)
	}
	p.spec = spec
	return nil
}

// Impact hands the spec, bound to target, to the submitter and destroys
// the projectile.
func (p *Projectile) Impact(target model.Handle) error {
	p.mu.Lock()
	if p.state != stateActive {
		p.mu.Unlock()
		return fmt.Errorf("impact %s: %w", p.Handle(), ErrNotActive)
	}
	if p.spec == nil {
		p.mu.Unlock()
		return fmt.Errorf("impact %s: no effect configured", p.Handle())
	}
	bound, err := p.spec.WithTarget(target)
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("impact %s: %w", p.Handle(), err)
	}
	p.state = stateDestroyed
	p.mu.Unlock()

	p.spawner.submitter.Submit(bound)
	if err := p.spawner.registry.Remove(p.Handle()); err != nil {
		return fmt.Errorf("impact %s: %w", p.Handle(), err)
	}
	return nil
}

// Spawner builds projectiles in two phases: Create reserves a handle that
// nothing can resolve yet, Activate publishes the configured projectile,
// Cancel releases a projectile that was never activated.
type Spawner struct {
	registry  *world.Registry
	submitter Submitter
}

// NewSpawner creates a spawner registering projectiles in registry and
// delivering impacts to submitter.
func NewSpawner(registry *world.Registry, submitter Submitter) *Spawner {
	return &Spawner{
		registry:  registry,
		submitter: submitter,
	}
}

// Create allocates a pending projectile at t owned by owner.
func (s *Spawner) Create(name string, t model.Transform, owner model.Handle) *Projectile {
	p := &Projectile{
		WorldObject: model.NewWorldObject(name, t.Location),
		spawner:     s,
		owner:       owner,
		rotation:    t.Rotation,
	}
	s.registry.Reserve(p)
	return p
}

// Activate makes a pending projectile visible to the world.
func (s *Spawner) Activate(p *Projectile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != statePending {
		return fmt.Errorf("activate %s: %w", p.Handle(), ErrNotPending)
	}
	if err := s.registry.Commit(p.Handle()); err != nil {
		return fmt.Errorf("activate %s: %w", p.Handle(), err)
	}
	p.state = stateActive
	return nil
}

// Cancel releases a pending projectile.
func (s *Spawner) Cancel(p *Projectile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != statePending {
		return fmt.Errorf("cancel %s: %w", p.Handle(), ErrNotPending)
	}
	p.state = stateDestroyed
	if err := s.registry.Remove(p.Handle()); err != nil {
		return fmt.Errorf("cancel %s: %w", p.Handle(), err)
	}
	slog.Debug("projectile cancelled", "projectile", p.Handle(), "name", p.Name())
	return nil
}
