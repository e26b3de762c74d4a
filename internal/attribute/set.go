package attribute

import (
	"fmt"
	"sync"
)

// Change is emitted after a committed mutation of one attribute.
type Change struct {
	Attribute ID
	Old       float64
	New       float64
}

// Observer receives attribute changes. Called outside the Set lock,
// in mutation order, on the goroutine that performed the mutation.
type Observer interface {
	AttributeChanged(owner int64, c Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(owner int64, c Change)

// AttributeChanged calls f.
func (f ObserverFunc) AttributeChanged(owner int64, c Change) { f(owner, c) }

// Set holds the attribute values of one character.
// Only ids passed to NewSet are known; every other id fails with ErrUnknownAttribute.
//
// Thread-safe: values are protected by sync.RWMutex.
type Set struct {
	owner int64

	mu     sync.RWMutex
	values map[ID]float64

	obsMu     sync.RWMutex
	observers []Observer
}

// NewSet creates a set owned by character owner with the given attributes at 0.
func NewSet(owner int64, ids ...ID) *Set {
	s := &Set{
		owner:  owner,
		values: make(map[ID]float64, len(ids)),
	}
	for _, id := range ids {
		if id == Invalid || id >= count {
			continue
		}
		s.values[id] = 0
	}
	return s
}

// NewCharacterSet creates a set with every known attribute.
func NewCharacterSet(owner int64) *Set {
	return NewSet(owner, All()...)
}

// Owner returns the id of the owning character.
func (s *Set) Owner() int64 {
	return s.owner
}

// Has reports whether id is registered on the set.
func (s *Set) Has(id ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[id]
	return ok
}

// Get returns the current value of id.
func (s *Set) Get(id ID) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[id]
	if !ok {
		return 0, fmt.Errorf("get %s: %w", id, ErrUnknownAttribute)
	}
	return v, nil
}

// Set stores v into id. If id has a dependent max, v is clamped to [0, max] first.
// Lowering a max re-clamps the attributes bounded by it.
// Observers are notified for every value that actually changed.
func (s *Set) Set(id ID, v float64) error {
	s.mu.Lock()
	changes, err := s.setLocked(id, v)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(changes)
	return nil
}

// Init stores v without dependent-max clamping and without notifications.
// Used while constructing a character.
func (s *Set) Init(id ID, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[id]; !ok {
		return fmt.Errorf("init %s: %w", id, ErrUnknownAttribute)
	}
	s.values[id] = v
	return nil
}

// Consume returns the value of id and resets it to 0 under one lock,
// so no other writer can observe the value between the read and the reset.
func (s *Set) Consume(id ID) (float64, error) {
	s.mu.Lock()
	v, ok := s.values[id]
	if !ok {
		s.mu.Unlock()
		return 0, fmt.Errorf("consume %s: %w", id, ErrUnknownAttribute)
	}
	s.values[id] = 0
	s.mu.Unlock()

	if v != 0 {
		s.notify([]Change{{Attribute: id, Old: v, New: 0}})
	}
	return v, nil
}

// Snapshot returns a copy of all values.
func (s *Set) Snapshot() map[ID]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[ID]float64, len(s.values))
	for id, v := range s.values {
		out[id] = v
	}
	return out
}

// Subscribe registers an observer.
func (s *Set) Subscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

// setLocked must be called with mu held.
func (s *Set) setLocked(id ID, v float64) ([]Change, error) {
	old, ok := s.values[id]
	if !ok {
		return nil, fmt.Errorf("set %s: %w", id, ErrUnknownAttribute)
	}

	desc := descriptors[id]
	if desc.Max != Invalid {
		maxV, ok := s.values[desc.Max]
		if !ok {
			return nil, fmt.Errorf("set %s: max %s: %w", id, desc.Max, ErrUnknownAttribute)
		}
		v = clamp(v, 0, maxV)
	}

	if v == old {
		return nil, nil
	}
	s.values[id] = v
	changes := []Change{{Attribute: id, Old: old, New: v}}

	// Re-clamp attributes bounded by id.
	for dep := Health; dep < count; dep++ {
		if descriptors[dep].Max != id {
			continue
		}
		cur, ok := s.values[dep]
		if !ok || cur <= v {
			continue
		}
		nv := clamp(cur, 0, v)
		s.values[dep] = nv
		changes = append(changes, Change{Attribute: dep, Old: cur, New: nv})
	}
	return changes, nil
}

func (s *Set) notify(changes []Change) {
	if len(changes) == 0 {
		return
	}
	s.obsMu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.RUnlock()

	for _, c := range changes {
		for _, o := range observers {
			o.AttributeChanged(s.owner, c)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
