package sector

import "iter"

// All returns an iterator over index/element pairs in index order.
// Iterating never resizes the container and can be restarted at any time.
func (s *Sector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < s.len; i++ {
			if !yield(i, s.at(i)) {
				return
			}
		}
	}
}

// Values returns an iterator over the elements in index order.
func (s *Sector[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < s.len; i++ {
			if !yield(s.at(i)) {
				return
			}
		}
	}
}

// Backward returns an iterator over index/element pairs from the last element to the first.
func (s *Sector[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := s.len - 1; i >= 0; i-- {
			if i >= s.len {
				continue
			}
			if !yield(i, s.at(i)) {
				return
			}
		}
	}
}
