package attribute

import (
	"errors"
	"fmt"
)

// ErrUnknownAttribute is returned when an attribute id is not registered on a Set.
var ErrUnknownAttribute = errors.New("unknown attribute")

// ID identifies an attribute.
type ID uint8

const (
	Invalid ID = iota

	// Vitals
	Health
	Mana

	// Derived maximums. Recomputed from primaries, never touched by damage.
	MaxHealth
	MaxMana

	// Primaries
	Vigor
	Intelligence

	// Meta: transient pipeline inputs, consumed and reset to 0.
	IncomingDamage

	count
)

// Descriptor describes an attribute.
type Descriptor struct {
	Name string
	// Max is the attribute bounding this one from above. Invalid means unbounded.
	Max ID
	// Meta marks transient attributes that are never read as steady-state values.
	Meta bool
}

var descriptors = [count]Descriptor{
	Health:         {Name: "Health", Max: MaxHealth},
	Mana:           {Name: "Mana", Max: MaxMana},
	MaxHealth:      {Name: "MaxHealth"},
	MaxMana:        {Name: "MaxMana"},
	Vigor:          {Name: "Vigor"},
	Intelligence:   {Name: "Intelligence"},
	IncomingDamage: {Name: "IncomingDamage", Meta: true},
}

// Describe returns the descriptor of id.
func Describe(id ID) (Descriptor, error) {
	if id == Invalid || id >= count {
		return Descriptor{}, fmt.Errorf("attribute %d: %w", id, ErrUnknownAttribute)
	}
	return descriptors[id], nil
}

// String returns the attribute name.
func (id ID) String() string {
	if id == Invalid || id >= count {
		return fmt.Sprintf("Attribute(%d)", uint8(id))
	}
	return descriptors[id].Name
}

// IsMeta reports whether id is a meta attribute.
func (id ID) IsMeta() bool {
	return id > Invalid && id < count && descriptors[id].Meta
}

// Parse returns the attribute with the given name.
func Parse(name string) (ID, error) {
	for id := Health; id < count; id++ {
		if descriptors[id].Name == name {
			return id, nil
		}
	}
	return Invalid, fmt.Errorf("attribute %q: %w", name, ErrUnknownAttribute)
}

// All returns every known attribute id in declaration order.
func All() []ID {
	out := make([]ID, 0, count-1)
	for id := Health; id < count; id++ {
		out = append(out, id)
	}
	return out
}
