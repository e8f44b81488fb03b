package permission

import "sort"

// Wildcard grants every capability when present in a set.
const Wildcard = "all"

// Set is an unordered collection of capability names.
//
// A nil Set is valid and grants nothing. Set values are not safe for
// concurrent mutation; treat them as frozen once handed to the engine.
type Set map[string]struct{}

// NewSet builds a Set from the given capability names. Empty names are
// dropped; duplicates collapse.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		s[name] = struct{}{}
	}
	return s
}

// Has reports whether the set grants the capability, either directly or
// through [Wildcard]. An empty or nil set grants nothing — not even an
// empty capability name.
func (s Set) Has(capability string) bool {
	if len(s) == 0 || capability == "" {
		return false
	}
	if _, ok := s[Wildcard]; ok {
		return true
	}
	_, ok := s[capability]
	return ok
}

// Names returns the capability names in sorted order. Used for claims
// encoding and stable test output.
func (s Set) Names() []string {
	if len(s) == 0 {
		return nil
	}
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the set. Cloning nil yields nil.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for name := range s {
		out[name] = struct{}{}
	}
	return out
}
