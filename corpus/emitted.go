package corpus

// EmittedSet tracks the normalized texts already written to one artifact.
// It is owned by a single Writer and discarded with it; dedup state never
// crosses artifacts.
type EmittedSet struct {
	texts map[string]struct{}
}

// NewEmittedSet creates an empty set.
func NewEmittedSet() *EmittedSet {
	return &EmittedSet{texts: make(map[string]struct{})}
}

// Add records a normalized text as emitted.
func (s *EmittedSet) Add(norm string) { s.texts[norm] = struct{}{} }

// Has reports whether a normalized text was already emitted.
func (s *EmittedSet) Has(norm string) bool {
	_, ok := s.texts[norm]
	return ok
}

// Len returns the number of distinct texts emitted.
func (s *EmittedSet) Len() int { return len(s.texts) }
