package stabilizer

import (
	"reflect"
	"time"
)

// Input is a source of raw values, typically a pin.
type Input[T any] interface {
	// Read returns the current raw value.
	Read() T
}

// InputFunc adapts a function to an Input.
type InputFunc[T any] func() T

// Read calls f.
func (f InputFunc[T]) Read() T {
	return f()
}

// DebouncedInput pairs an Input with a known-start debouncer, so each Read
// samples the input and feeds the sample to the debouncer.
type DebouncedInput[T comparable] struct {
	debouncer *TimedDebouncer[T, Known[T]]
	input     Input[T]
}

// NewDebouncedInput wraps input. The input is read once to seed the
// starting value.
func NewDebouncedInput[T comparable](input Input[T], debounceTime time.Duration, opts ...Option) *DebouncedInput[T] {
	return &DebouncedInput[T]{
		debouncer: New(input.Read(), debounceTime, opts...),
		input:     input,
	}
}

// Read samples the input and returns the debounced state.
func (i *DebouncedInput[T]) Read() State[T, Known[T]] {
	return i.debouncer.Update(i.input.Read())
}

// ReadStable returns the last stable value without sampling the input.
func (i *DebouncedInput[T]) ReadStable() T {
	return i.debouncer.ReadStable().Value()
}

// Debouncer returns the underlying debouncer.
func (i *DebouncedInput[T]) Debouncer() *TimedDebouncer[T, Known[T]] {
	return i.debouncer
}

// Result is a comparable value-or-error sample from a fallible input.
//
// Results are compared with ==, so errors compare by interface equality:
// two reads failing with the same sentinel error are the same raw value and
// can stabilize, while two distinct error values are not. Build failed
// results with Fail: an error whose dynamic type cannot be compared would
// make == panic, so Fail boxes it and every such failure is distinct.
type Result[T comparable] struct {
	Value T
	Err   error
}

// Ok returns a successful Result.
func Ok[T comparable](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail returns a failed Result. errors.As and errors.Is still reach err
// through the result's Err.
func Fail[T comparable](err error) Result[T] {
	if err != nil && !reflect.TypeOf(err).Comparable() {
		err = &uncomparableError{err: err}
	}
	return Result[T]{Err: err}
}

// uncomparableError gives an error of uncomparable type pointer identity.
type uncomparableError struct {
	err error
}

func (e *uncomparableError) Error() string { return e.err.Error() }
func (e *uncomparableError) Unwrap() error { return e.err }

// Get returns the value and error.
func (r Result[T]) Get() (T, error) {
	return r.Value, r.Err
}

// Pin is a digital input line. *gpiocdev.Line satisfies it.
type Pin interface {
	// Value returns the logical level, 0 or 1.
	Value() (int, error)
}

// PinInput reads a Pin as a fallible boolean Input. Read errors are passed
// through unchanged.
type PinInput struct {
	Pin Pin
}

// Read samples the pin.
func (p PinInput) Read() Result[bool] {
	v, err := p.Pin.Value()
	if err != nil {
		return Fail[bool](err)
	}
	return Ok(v != 0)
}

// DebouncedPin is a debounced digital input. IsHigh and IsLow report the
// stable level; call Read to sample the pin.
type DebouncedPin struct {
	*DebouncedInput[Result[bool]]
}

// NewDebouncedPin wraps pin, sampling it once to seed the stable level.
func NewDebouncedPin(pin Pin, debounceTime time.Duration, opts ...Option) *DebouncedPin {
	return &DebouncedPin{
		DebouncedInput: NewDebouncedInput[Result[bool]](PinInput{Pin: pin}, debounceTime, opts...),
	}
}

// IsHigh reports whether the stable level is high. If the stable sample is a
// failed read its error is returned.
func (p *DebouncedPin) IsHigh() (bool, error) {
	r := p.ReadStable()
	if r.Err != nil {
		return false, r.Err
	}
	return r.Value, nil
}

// IsLow reports whether the stable level is low. If the stable sample is a
// failed read its error is returned.
func (p *DebouncedPin) IsLow() (bool, error) {
	r := p.ReadStable()
	if r.Err != nil {
		return false, r.Err
	}
	return !r.Value, nil
}
