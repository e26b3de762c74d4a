package gametag

// Set is an unordered container of tags with O(1) membership.
// The zero value is an empty set ready to use for reads; Add allocates lazily.
type Set struct {
	ids map[ID]struct{}
}

// NewSet creates a set holding ids. None is ignored.
func NewSet(ids ...ID) Set {
	s := Set{ids: make(map[ID]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set.
func (s *Set) Add(id ID) {
	if id == None {
		return
	}
	if s.ids == nil {
		s.ids = make(map[ID]struct{}, 4)
	}
	s.ids[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s Set) Has(id ID) bool {
	_, ok := s.ids[id]
	return ok
}

// HasAll reports whether every tag of other is in s. An empty other matches.
func (s Set) HasAll(other Set) bool {
	for id := range other.ids {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// HasAny reports whether s and other share at least one tag.
func (s Set) HasAny(other Set) bool {
	small, big := s, other
	if small.Len() > big.Len() {
		small, big = big, small
	}
	for id := range small.ids {
		if big.Has(id) {
			return true
		}
	}
	return false
}

// Len returns the number of tags in the set.
func (s Set) Len() int {
	return len(s.ids)
}

// IDs returns the tags of the set in unspecified order.
func (s Set) IDs() []ID {
	out := make([]ID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := Set{ids: make(map[ID]struct{}, len(s.ids))}
	for id := range s.ids {
		c.ids[id] = struct{}{}
	}
	return c
}

// Union returns a new set with the tags of a and b. Neither input is modified.
func Union(a, b Set) Set {
	out := Set{ids: make(map[ID]struct{}, a.Len()+b.Len())}
	for id := range a.ids {
		out.ids[id] = struct{}{}
	}
	for id := range b.ids {
		out.ids[id] = struct{}{}
	}
	return out
}
