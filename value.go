package stabilizer

import "fmt"

// Slot abstracts over whether a debouncer always holds a value (Known) or
// may not have one yet (Unknown). It is implemented only by this package.
type Slot[T comparable, S any] interface {
	// TryGet returns the held value and true, or false when empty.
	TryGet() (T, bool)
	// Holding returns a slot of the same kind holding v.
	Holding(v T) S

	sealed()
}

// Known is a slot that always holds exactly one value.
type Known[T comparable] struct {
	v T
}

// KnownOf returns a Known slot holding v.
func KnownOf[T comparable](v T) Known[T] {
	return Known[T]{v: v}
}

// Value returns the held value.
func (k Known[T]) Value() T {
	return k.v
}

// TryGet always succeeds.
func (k Known[T]) TryGet() (T, bool) {
	return k.v, true
}

// Holding returns a Known slot holding v.
func (Known[T]) Holding(v T) Known[T] {
	return Known[T]{v: v}
}

func (Known[T]) sealed() {}

func (k Known[T]) String() string {
	return fmt.Sprint(k.v)
}

// Unknown is a slot that is empty until a value is recorded. The zero value
// is empty.
type Unknown[T comparable] struct {
	v  T
	ok bool
}

// UnknownOf returns an Unknown slot holding v.
func UnknownOf[T comparable](v T) Unknown[T] {
	return Unknown[T]{v: v, ok: true}
}

// Value returns the held value and whether one has been recorded.
func (u Unknown[T]) Value() (T, bool) {
	return u.v, u.ok
}

// TryGet returns the held value, or false while empty.
func (u Unknown[T]) TryGet() (T, bool) {
	return u.v, u.ok
}

// IsKnown reports whether a value has been recorded.
func (u Unknown[T]) IsKnown() bool {
	return u.ok
}

// Holding returns an Unknown slot holding v.
func (Unknown[T]) Holding(v T) Unknown[T] {
	return Unknown[T]{v: v, ok: true}
}

func (Unknown[T]) sealed() {}

func (u Unknown[T]) String() string {
	if !u.ok {
		return "<unknown>"
	}
	return fmt.Sprint(u.v)
}

// slotOf converts a bare value into a slot of kind S.
func slotOf[T comparable, S Slot[T, S]](v T) S {
	var s S
	return s.Holding(v)
}
