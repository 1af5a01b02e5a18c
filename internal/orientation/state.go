package orientation

import (
	"fmt"
	"sync"
)

// Change reports the outcome of a state update.
type Change struct {
	Previous Method
	Active   Method
	Changed  bool
}

// Snapshot is a consistent copy of the three state fields.
type Snapshot struct {
	User   Method
	Tag    Method
	Active Method
}

// State holds the user-selected method, the tag-derived method and the
// method currently in effect. The zero value is ready to use and resolves
// to Identity.
//
// The mutex only covers the read-modify-decide step. Callers act on the
// returned Change after the lock is released.
type State struct {
	mu     sync.Mutex
	user   Method
	tag    Method
	active Method
}

// SetUser stores an explicit method choice (Auto included).
func (s *State) SetUser(m Method) (Change, error) {
	if !m.Valid() {
		return Change{}, fmt.Errorf("%w: %d", ErrInvalidMethod, int(m))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = m
	return s.recomputeLocked(), nil
}

// SetTag stores the method derived from an image-orientation tag.
func (s *State) SetTag(m Method) (Change, error) {
	if !m.Concrete() {
		return Change{}, fmt.Errorf("%w: tag cannot select %v", ErrInvalidMethod, m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tag = m
	return s.recomputeLocked(), nil
}

func (s *State) recomputeLocked() Change {
	next := Resolve(s.user, s.tag)
	c := Change{Previous: s.active, Active: next, Changed: next != s.active}
	s.active = next
	return c
}

// User returns the explicit method choice.
func (s *State) User() Method {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Active returns the method in effect. Never Auto.
func (s *State) Active() Method {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Snapshot returns all fields at once.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{User: s.user, Tag: s.tag, Active: s.active}
}
