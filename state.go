package stabilizer

import "fmt"

// Kind identifies the variant of a State.
type Kind uint8

const (
	KindStable Kind = iota + 1
	KindUnstable
	KindTransitioned
)

func (k Kind) String() string {
	switch k {
	case KindStable:
		return "stable"
	case KindUnstable:
		return "unstable"
	case KindTransitioned:
		return "transitioned"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// State is the outcome of a single update: one of Stable, Unstable or
// Transitioned. S is the slot kind of the debouncer that produced it.
type State[T comparable, S Slot[T, S]] interface {
	// Kind reports which variant this is.
	Kind() Kind
	// StableValue returns the stable value after the update.
	StableValue() S
	// MostRecentValue returns the latest raw value, which may not be stable yet.
	MostRecentValue() S
	// IsTransition reports whether this update promoted a new stable value.
	IsTransition() bool

	state()
}

// Stable means the raw input equals the current stable value.
type Stable[T comparable, S Slot[T, S]] struct {
	Value T
}

func (Stable[T, S]) Kind() Kind           { return KindStable }
func (s Stable[T, S]) StableValue() S     { return slotOf[T, S](s.Value) }
func (s Stable[T, S]) MostRecentValue() S { return slotOf[T, S](s.Value) }
func (Stable[T, S]) IsTransition() bool   { return false }
func (Stable[T, S]) state()               {}
func (s Stable[T, S]) String() string     { return fmt.Sprintf("Stable{%v}", s.Value) }

// Unstable means the raw input differs from the stable value and has not
// been held long enough to be promoted.
type Unstable[T comparable, S Slot[T, S]] struct {
	// Stable is the current stable value, possibly unknown.
	Stable S
	// MostRecent is the latest raw value, possibly unknown when nothing has
	// been observed yet.
	MostRecent S
}

func (Unstable[T, S]) Kind() Kind           { return KindUnstable }
func (u Unstable[T, S]) StableValue() S     { return u.Stable }
func (u Unstable[T, S]) MostRecentValue() S { return u.MostRecent }
func (Unstable[T, S]) IsTransition() bool   { return false }
func (Unstable[T, S]) state()               {}
func (u Unstable[T, S]) String() string {
	return fmt.Sprintf("Unstable{stable: %v, most recent: %v}", u.Stable, u.MostRecent)
}

// Transitioned means the raw input has been held for the debounce duration
// and was promoted to the stable value by this update.
type Transitioned[T comparable, S Slot[T, S]] struct {
	// Stable is the newly promoted value.
	Stable T
	// PreviousStable is the stable value before this update, possibly unknown.
	PreviousStable S
}

func (Transitioned[T, S]) Kind() Kind           { return KindTransitioned }
func (t Transitioned[T, S]) StableValue() S     { return slotOf[T, S](t.Stable) }
func (t Transitioned[T, S]) MostRecentValue() S { return slotOf[T, S](t.Stable) }
func (Transitioned[T, S]) IsTransition() bool   { return true }
func (Transitioned[T, S]) state()               {}
func (t Transitioned[T, S]) String() string {
	return fmt.Sprintf("Transitioned{stable: %v, previous: %v}", t.Stable, t.PreviousStable)
}

// Match calls the function matching the variant of st and returns its result.
func Match[T comparable, S Slot[T, S], R any](
	st State[T, S],
	stable func(Stable[T, S]) R,
	unstable func(Unstable[T, S]) R,
	transitioned func(Transitioned[T, S]) R,
) R {
	switch s := st.(type) {
	case Stable[T, S]:
		return stable(s)
	case Unstable[T, S]:
		return unstable(s)
	case Transitioned[T, S]:
		return transitioned(s)
	}
	panic(fmt.Sprintf("stabilizer: unexpected state %T", st))
}
