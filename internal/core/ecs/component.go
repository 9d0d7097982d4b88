package ecs

// Removable is a side table a World can strip an entity from.
type Removable interface {
	Remove(id EntityID)
}

// Store is a generic side table keyed by entity.
type Store[T any] struct {
	data map[EntityID]T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[EntityID]T, 64),
	}
}

func (s *Store[T]) Set(id EntityID, c T) {
	s.data[id] = c
}

func (s *Store[T]) Get(id EntityID) (T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) {
	delete(s.data, id)
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// Each visits entries in map order. Callers needing a stable order keep
// their own index.
func (s *Store[T]) Each(fn func(EntityID, T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}

// Each2 iterates over entities present in both stores.
// It iterates over the smaller store and checks the larger one.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, A, B)) {
	if sa.Len() <= sb.Len() {
		for id, a := range sa.data {
			if b, ok := sb.data[id]; ok {
				fn(id, a, b)
			}
		}
		return
	}
	for id, b := range sb.data {
		if a, ok := sa.data[id]; ok {
			fn(id, a, b)
		}
	}
}
