// Package selection provides the set of skills picked on the registration form.
package selection

// node is one entry of the insertion-ordered list.
type node struct {
	name       string
	prev, next *node
}

// Set is a membership-backed set of skill names that iterates in insertion
// order. Duplicates are impossible by construction. The zero value is not
// usable; call New.
type Set struct {
	members    map[string]*node
	head, tail *node
}

// New returns an empty set.
func New() *Set {
	return &Set{members: make(map[string]*node)}
}

// Toggle adds name when checked and removes it otherwise.
func (s *Set) Toggle(name string, checked bool) {
	if checked {
		s.Add(name)
		return
	}
	s.Remove(name)
}

// Add appends name unless it is already present. It reports whether the set
// changed.
func (s *Set) Add(name string) bool {
	if _, ok := s.members[name]; ok {
		return false
	}
	n := &node{name: name, prev: s.tail}
	if s.tail != nil {
		s.tail.next = n
	} else {
		s.head = n
	}
	s.tail = n
	s.members[name] = n
	return true
}

// Remove deletes name. It reports whether the set changed.
func (s *Set) Remove(name string) bool {
	n, ok := s.members[name]
	if !ok {
		return false
	}
	delete(s.members, name)
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	return true
}

// Has reports membership.
func (s *Set) Has(name string) bool {
	_, ok := s.members[name]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.members) }

// Items returns the members in insertion order.
func (s *Set) Items() []string {
	out := make([]string, 0, len(s.members))
	for n := s.head; n != nil; n = n.next {
		out = append(out, n.name)
	}
	return out
}

// Clear empties the set.
func (s *Set) Clear() {
	s.members = make(map[string]*node)
	s.head, s.tail = nil, nil
}
