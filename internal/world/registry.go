package world

import (
	"fmt"
	"sync"

	"github.com/udisondev/aurafx/internal/model"
)

// Bindable is an actor that accepts the handle issued on registration.
type Bindable interface {
	model.Actor
	BindHandle(h model.Handle)
}

type slot struct {
	gen     uint32
	actor   model.Actor // nil when free
	pending bool        // reserved, not yet visible
}

// Registry owns the actors of the world and hands out generation-checked
// handles. A handle resolves only while the actor it was issued for is alive;
// after Remove the slot's generation moves on and old handles go stale.
//
// Thread-safe: all methods are protected by sync.RWMutex.
type Registry struct {
	mu    sync.RWMutex
	slots []slot // index 0 is reserved so the zero Handle never resolves
	free  []uint32
	live  int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		slots: make([]slot, 1, 256),
		free:  make([]uint32, 0, 64),
	}
}

// Register stores a and binds its handle.
func (r *Registry) Register(a Bindable) model.Handle {
	return r.insert(a, false)
}

// Reserve allocates a handle for a and binds it, but the handle does not
// resolve until Commit. Remove releases a reservation.
func (r *Registry) Reserve(a Bindable) model.Handle {
	return r.insert(a, true)
}

// Commit makes a reserved actor visible.
func (r *Registry) Commit(h model.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.IsZero() || int(h.Index) >= len(r.slots) {
		return fmt.Errorf("commit %s: %w", h, model.ErrStaleReference)
	}
	s := &r.slots[h.Index]
	if s.actor == nil || s.gen != h.Gen {
		return fmt.Errorf("commit %s: %w", h, model.ErrStaleReference)
	}
	s.pending = false
	return nil
}

func (r *Registry) insert(a Bindable, pending bool) model.Handle {
	r.mu.Lock()
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}
	s := &r.slots[idx]
	s.gen++
	s.actor = a
	s.pending = pending
	r.live++
	h := model.Handle{Index: idx, Gen: s.gen}
	r.mu.Unlock()

	a.BindHandle(h)
	return h
}

// Resolve returns the actor behind h if it is still alive.
// Implements model.Resolver.
func (r *Registry) Resolve(h model.Handle) (model.Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h.IsZero() || int(h.Index) >= len(r.slots) {
		return nil, false
	}
	s := r.slots[h.Index]
	if s.actor == nil || s.pending || s.gen != h.Gen {
		return nil, false
	}
	return s.actor, true
}

// Remove destroys the actor behind h, or releases its reservation.
// Every outstanding copy of h goes stale.
func (r *Registry) Remove(h model.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.IsZero() || int(h.Index) >= len(r.slots) {
		return fmt.Errorf("remove %s: %w", h, model.ErrStaleReference)
	}
	s := &r.slots[h.Index]
	if s.actor == nil || s.gen != h.Gen {
		return fmt.Errorf("remove %s: %w", h, model.ErrStaleReference)
	}
	s.actor = nil
	s.pending = false
	s.gen++ // invalidate before the slot is reused
	r.free = append(r.free, h.Index)
	r.live--
	return nil
}

// Len returns the number of live and reserved actors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.live
}

// Combatant resolves h to a combat-capable actor.
func (r *Registry) Combatant(h model.Handle) (model.Combatant, error) {
	return model.ResolveCombatant(r, h)
}
