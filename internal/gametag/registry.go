package gametag

import (
	"sort"
	"sync"
)

// ID is an interned gameplay tag. Zero is never issued and means "no tag".
type ID uint32

// None is the zero tag.
const None ID = 0

// Registry interns tag names into comparable IDs.
// Append-only: a name keeps its ID for the lifetime of the registry.
//
// Thread-safe: all methods are protected by sync.RWMutex.
type Registry struct {
	mu    sync.RWMutex
	ids   map[string]ID
	names []string // index = ID; names[0] is reserved
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:   make(map[string]ID, 64),
		names: make([]string, 1, 64),
	}
}

// Intern returns the ID for name, assigning the next one on first use.
// Calling Intern twice with the same name returns the same ID.
func (r *Registry) Intern(name string) ID {
	r.mu.RLock()
	id, ok := r.ids[name]
	r.mu.RUnlock()
	if ok {
		return id
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check: another goroutine may have interned it between locks.
	if id, ok := r.ids[name]; ok {
		return id
	}
	id = ID(len(r.names))
	r.names = append(r.names, name)
	r.ids[name] = id
	return id
}

// Lookup returns the ID for name without interning it.
func (r *Registry) Lookup(name string) (ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ids[name]
	return id, ok
}

// Name returns the name of id, or "" if id was never issued.
func (r *Registry) Name(id ID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == None || int(id) >= len(r.names) {
		return ""
	}
	return r.names[id]
}

// Len returns the number of interned tags.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names) - 1
}

// Names returns sorted names of the tags in s.
func (r *Registry) Names(s Set) []string {
	out := make([]string, 0, s.Len())
	for id := range s.ids {
		if n := r.Name(id); n != "" {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// defaultRegistry is the process-wide symbol table.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Intern interns name in the process-wide registry.
func Intern(name string) ID {
	return defaultRegistry.Intern(name)
}

// String returns the tag name from the process-wide registry.
func (id ID) String() string {
	if n := defaultRegistry.Name(id); n != "" {
		return n
	}
	return "<none>"
}
