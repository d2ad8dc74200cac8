package physics

// Handle is a stable reference into an arena. The generation detects reuse of
// a slot after removal, so stale handles never alias a newer element.
type Handle struct {
	Index      uint32
	Generation uint32
}

// BodyHandle references a rigid body in the engine.
type BodyHandle Handle

// ColliderHandle references a collider in the engine.
type ColliderHandle Handle

// JointHandle references a joint in the engine.
type JointHandle Handle

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Set is a generational arena. Elements may move in memory when the set
// grows; callers keep handles, never pointers, across insertions.
type Set[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// Insert stores v and returns its handle.
func (s *Set[T]) Insert(v T) Handle {
	s.count++
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		sl := &s.slots[idx]
		sl.value = v
		sl.occupied = true
		return Handle{Index: idx, Generation: sl.generation}
	}
	s.slots = append(s.slots, slot[T]{value: v, occupied: true})
	return Handle{Index: uint32(len(s.slots) - 1)}
}

// Get returns a pointer to the element, valid until the next Insert.
func (s *Set[T]) Get(h Handle) (*T, bool) {
	if int(h.Index) >= len(s.slots) {
		return nil, false
	}
	sl := &s.slots[h.Index]
	if !sl.occupied || sl.generation != h.Generation {
		return nil, false
	}
	return &sl.value, true
}

// Contains reports whether h refers to a live element.
func (s *Set[T]) Contains(h Handle) bool {
	_, ok := s.Get(h)
	return ok
}

// Remove deletes the element and returns it.
func (s *Set[T]) Remove(h Handle) (T, bool) {
	var zero T
	if _, ok := s.Get(h); !ok {
		return zero, false
	}
	sl := &s.slots[h.Index]
	v := sl.value
	sl.value = zero
	sl.occupied = false
	sl.generation++
	s.free = append(s.free, h.Index)
	s.count--
	return v, true
}

// Len returns the number of live elements.
func (s *Set[T]) Len() int {
	return s.count
}

// Each calls fn for every live element in slot order.
func (s *Set[T]) Each(fn func(Handle, *T)) {
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.occupied {
			fn(Handle{Index: uint32(i), Generation: sl.generation}, &sl.value)
		}
	}
}
