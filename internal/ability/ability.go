package ability

import (
	"log/slog"
	"sync"

	"github.com/udisondev/aurafx/internal/gametag"
)

// Ability is something a character can activate, selected by its tags.
type Ability interface {
	Name() string
	Tags() gametag.Set
	Activate(level int32) error
}

// Granted is an ability granted to an owner at a level.
type Granted struct {
	Ability Ability
	Level   int32
}

// System is the per-character ability owner: it holds granted abilities
// and activates them by tag (hit reactions, triggered spells).
//
// Thread-safe: all methods are protected by sync.RWMutex.
type System struct {
	mu      sync.RWMutex
	owner   string
	granted []Granted
}

// NewSystem creates an empty ability system for the named owner.
func NewSystem(owner string) *System {
	return &System{
		owner:   owner,
		granted: make([]Granted, 0, 8),
	}
}

// Grant adds an ability. Granting an ability with the same name replaces it.
func (s *System) Grant(a Ability, level int32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, g := range s.granted {
		if g.Ability.Name() == a.Name() {
			s.granted[i] = Granted{Ability: a, Level: level}
			return
		}
	}
	s.granted = append(s.granted, Granted{Ability: a, Level: level})
}

// Revoke removes the ability with the given name.
func (s *System) Revoke(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, g := range s.granted {
		if g.Ability.Name() != name {
			s.granted[n] = g
			n++
		}
	}
	s.granted = s.granted[:n]
}

// Find returns the granted ability with the given name.
func (s *System) Find(name string) (Granted, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.granted {
		if g.Ability.Name() == name {
			return g, true
		}
	}
	return Granted{}, false
}

// TryActivateAbilitiesByTag activates every granted ability whose tags
// contain all of tags. Returns the number of abilities activated.
// A failing ability is logged and does not stop the others.
func (s *System) TryActivateAbilitiesByTag(tags gametag.Set) int {
	s.mu.RLock()
	matched := make([]Granted, 0, 2)
	for _, g := range s.granted {
		if g.Ability.Tags().HasAll(tags) {
			matched = append(matched, g)
		}
	}
	s.mu.RUnlock()

	activated := 0
	for _, g := range matched {
		if err := g.Ability.Activate(g.Level); err != nil {
			slog.Warn("ability activation failed",
				"owner", s.owner,
				"ability", g.Ability.Name(),
				"error", err)
			continue
		}
		activated++
	}
	return activated
}

// Func is an Ability backed by a function.
type Func struct {
	name string
	tags gametag.Set
	fn   func(level int32) error
}

// NewFunc creates a function-backed ability.
func NewFunc(name string, tags gametag.Set, fn func(level int32) error) *Func {
	return &Func{name: name, tags: tags, fn: fn}
}

func (f *Func) Name() string      { return f.name }
func (f *Func) Tags() gametag.Set { return f.tags }

func (f *Func) Activate(level int32) error {
	if f.fn == nil {
		return nil
	}
	return f.fn(level)
}
