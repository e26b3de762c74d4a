package attribute

import "sync"

// Replica is a read-only mirror of a Set fed by change notifications,
// the way a client sees replicated attributes.
// Ordering across different attributes is not guaranteed; each attribute
// follows the server-side mutation order.
type Replica struct {
	mu     sync.RWMutex
	values map[ID]float64

	// OnRep is called after a replicated value is applied (rep-notify).
	OnRep func(c Change)
}

// NewReplica creates an empty mirror.
func NewReplica() *Replica {
	return &Replica{values: make(map[ID]float64, count)}
}

// AttributeChanged implements Observer.
func (r *Replica) AttributeChanged(_ int64, c Change) {
	// Meta attributes are not replicated.
	if c.Attribute.IsMeta() {
		return
	}
	r.mu.Lock()
	r.values[c.Attribute] = c.New
	r.mu.Unlock()

	if r.OnRep != nil {
		r.OnRep(c)
	}
}

// Seed copies the values of a snapshot, skipping meta attributes.
func (r *Replica) Seed(snapshot map[ID]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range snapshot {
		if id.IsMeta() {
			continue
		}
		r.values[id] = v
	}
}

// Get returns the mirrored value of id.
func (r *Replica) Get(id ID) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[id]
	return v, ok
}
